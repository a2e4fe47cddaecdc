package authz

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// ErrUnavailable 授权服务未初始化
var ErrUnavailable = errors.New("authz service unavailable")

// Service 基于 casbin 的路由级 RBAC，策略存放在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("authz load policy: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceRole role 能否以 act 方法访问 obj
func (s *Service) EnforceRole(role, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(obj), NormalizeAction(act))
}

// ListRoles 出现在策略或继承关系里的角色，按名称排序
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subjects, err := s.enforcer.GetAllSubjects()
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	parents, err := s.enforcer.GetAllRoles()
	if err != nil {
		return nil, fmt.Errorf("list parent roles: %w", err)
	}
	roles := slices.DeleteFunc(slices.Concat(subjects, parents), func(name string) bool {
		return !strings.HasPrefix(name, rolePrefix)
	})
	slices.Sort(roles)
	return slices.Compact(roles), nil
}

// GetRolePolicies 角色自身与继承得到的全部策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetImplicitPermissionsForUser(subject)
	if err != nil {
		return nil, fmt.Errorf("implicit permissions of %s: %w", subject, err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if p, ok := policyFromRule(rule); ok {
			policies = append(policies, p)
		}
	}
	slices.SortFunc(policies, func(a, b Policy) int {
		return cmp.Or(
			cmp.Compare(a.Subject, b.Subject),
			cmp.Compare(a.Object, b.Object),
			cmp.Compare(a.Action, b.Action),
		)
	})
	return policies, nil
}
