package service

import (
	"unicode"

	"github.com/dfn-network/internal/config"
)

// bcrypt 只使用前 72 字节
const maxPasswordBytes = 72

type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword || target == ErrValidation
}

// Key 本地化消息 key
func (e passwordPolicyError) Key() string {
	return e.key
}

// Args 本地化消息参数
func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

type passwordTraits struct {
	runes                         int
	upper, lower, number, special bool
}

func inspectPassword(password string) passwordTraits {
	var t passwordTraits
	for _, r := range password {
		t.runes++
		switch {
		case unicode.IsUpper(r):
			t.upper = true
		case unicode.IsLower(r):
			t.lower = true
		case unicode.IsDigit(r):
			t.number = true
		default:
			t.special = true
		}
	}
	return t
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > maxPasswordBytes {
		return passwordPolicyError{key: "error.password_max_length", args: []interface{}{maxPasswordBytes}}
	}
	traits := inspectPassword(password)
	if policy.MinLength > 0 && traits.runes < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	rules := []struct {
		required bool
		present  bool
		key      string
	}{
		{policy.RequireUpper, traits.upper, "error.password_require_upper"},
		{policy.RequireLower, traits.lower, "error.password_require_lower"},
		{policy.RequireNumber, traits.number, "error.password_require_number"},
		{policy.RequireSpecial, traits.special, "error.password_require_special"},
	}
	for _, rule := range rules {
		if rule.required && !rule.present {
			return passwordPolicyError{key: rule.key}
		}
	}
	return nil
}
