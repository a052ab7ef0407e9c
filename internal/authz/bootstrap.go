package authz

import (
	"github.com/dfn-network/internal/constants"
	"github.com/dfn-network/internal/logger"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 系统预置角色矩阵
// explorer 可使用购物车、团购与通知；provider 额外可上架元器件；admin 拥有全部权限
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.UserRoleExplorer,
			Policies: []Policy{
				{Object: "/auth/me", Action: "GET"},
				{Object: "/auth/logout", Action: "POST"},
				{Object: "/cart", Action: "*"},
				{Object: "/cart/*", Action: "*"},
				{Object: "/groupbuying", Action: "POST"},
				{Object: "/groupbuying/mine", Action: "GET"},
				{Object: "/groupbuying/participations", Action: "GET"},
				{Object: "/groupbuying/:id/join", Action: "POST"},
				{Object: "/groupbuying/:id/leave", Action: "POST"},
				{Object: "/groupbuying/:id/status", Action: "PUT"},
				{Object: "/groupbuying/:id/participants/:user_id/paid", Action: "POST"},
				{Object: "/notifications", Action: "GET"},
				{Object: "/notifications/:id/read", Action: "POST"},
			},
		},
		{
			Role:     constants.UserRoleProvider,
			Inherits: []string{constants.UserRoleExplorer},
			Policies: []Policy{
				{Object: "/components", Action: "POST"},
			},
		},
		{
			Role:     constants.UserRoleAdmin,
			Inherits: []string{constants.UserRoleProvider},
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 将预置角色的直连策略同步为 BuiltinRoleSeeds 声明的集合（幂等）
// 库中多出的旧策略会被撤销，使路由调整在重启后生效
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		for _, parent := range seed.Inherits {
			if err := s.Inherit(seed.Role, parent); err != nil {
				return err
			}
		}
		granted, revoked, err := s.syncPolicies(seed.Role, seed.Policies)
		if err != nil {
			return err
		}
		if granted > 0 || revoked > 0 {
			logger.Infow("authz_role_synced", "role", seed.Role, "granted", granted, "revoked", revoked)
		}
	}
	return nil
}

func (s *Service) syncPolicies(role string, want []Policy) (granted, revoked int, err error) {
	current, err := s.Policies(role)
	if err != nil {
		return 0, 0, err
	}
	have := make(map[Policy]bool, len(current))
	for _, policy := range current {
		have[policy] = true
	}
	declared := make(map[Policy]bool, len(want))
	for _, policy := range want {
		policy = policy.normalized()
		declared[policy] = true
		if have[policy] {
			continue
		}
		if err := s.Grant(role, policy); err != nil {
			return granted, revoked, err
		}
		granted++
	}
	for _, policy := range current {
		if declared[policy] {
			continue
		}
		if err := s.Revoke(role, policy); err != nil {
			return granted, revoked, err
		}
		revoked++
	}
	return granted, revoked, nil
}
