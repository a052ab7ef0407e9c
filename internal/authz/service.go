package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiPrefix       = "/api"
	casbinTableName = "casbin_rule"
	subjectPrefix   = "role:"
	inheritance     = "g"
)

// 角色可继承，资源按 gin 路由模板匹配（keyMatch2），动作 "*" 表示任意方法
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (r.sub == p.sub || g(r.sub, p.sub)) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

var (
	errUnavailable    = errors.New("authz service unavailable")
	errRoleRequired   = errors.New("role is required")
	errActionRequired = errors.New("action is required")
)

// Policy 角色对某个路由模板的授权
type Policy struct {
	Object string `json:"object"`
	Action string `json:"action"`
}

func (p Policy) normalized() Policy {
	return Policy{Object: NormalizeObject(p.Object), Action: NormalizeAction(p.Action)}
}

// Service 基于 casbin 的角色授权，策略存放在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已持久化的策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz: db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("authz: adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return errUnavailable
	}
	return nil
}

// EnforceRole 判定角色能否访问 method path，空角色直接拒绝
func (s *Service) EnforceRole(role, path, method string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := subjectOf(role)
	if err != nil {
		return false, nil
	}
	return s.enforcer.Enforce(subject, NormalizeObject(path), NormalizeAction(method))
}

// Grant 授予策略，已存在时为空操作
func (s *Service) Grant(role string, policy Policy) error {
	subject, policy, err := s.resolve(role, policy)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddPolicy(subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("authz: grant %s %s %s: %w", subject, policy.Action, policy.Object, err)
	}
	return nil
}

// Revoke 撤销策略
func (s *Service) Revoke(role string, policy Policy) error {
	subject, policy, err := s.resolve(role, policy)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemovePolicy(subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("authz: revoke %s %s %s: %w", subject, policy.Action, policy.Object, err)
	}
	return nil
}

func (s *Service) resolve(role string, policy Policy) (string, Policy, error) {
	if err := s.ready(); err != nil {
		return "", Policy{}, err
	}
	subject, err := subjectOf(role)
	if err != nil {
		return "", Policy{}, err
	}
	policy = policy.normalized()
	if policy.Action == "" {
		return "", Policy{}, errActionRequired
	}
	return subject, policy, nil
}

// Inherit child 继承 parent 的全部策略
func (s *Service) Inherit(child, parent string) error {
	if err := s.ready(); err != nil {
		return err
	}
	childSubject, err := subjectOf(child)
	if err != nil {
		return err
	}
	parentSubject, err := subjectOf(parent)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy(inheritance, childSubject, parentSubject); err != nil {
		return fmt.Errorf("authz: inherit %s <- %s: %w", childSubject, parentSubject, err)
	}
	return nil
}

// Policies 角色直接持有的策略（不含继承），按资源、动作排序
func (s *Service) Policies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := subjectOf(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("authz: policies of %s: %w", subject, err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{Object: rule[1], Action: rule[2]}.normalized())
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object != policies[j].Object {
			return policies[i].Object < policies[j].Object
		}
		return policies[i].Action < policies[j].Action
	})
	return policies, nil
}

// subjectOf 角色名转 casbin 主体：小写、空格转下划线、加 role: 前缀
func subjectOf(role string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(role))
	name = strings.TrimPrefix(name, subjectPrefix)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		return "", errRoleRequired
	}
	return subjectPrefix + name, nil
}

// NormalizeObject 路由路径去掉 /api 前缀，保证以 / 开头
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	switch {
	case path == apiPrefix:
		return "/"
	case strings.HasPrefix(path, apiPrefix+"/"):
		return path[len(apiPrefix):]
	}
	return path
}

func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
