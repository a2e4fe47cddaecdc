package authz

import (
	"fmt"
	"strings"

	"github.com/realcpa-hub/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// 所有登录用户共享的基础角色，不直接分配给用户
const memberRole = "member"

// BuiltinRoleSeeds 角色名与用户表 role 字段一致
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: memberRole,
			Policies: []Policy{
				{Object: "/me", Action: "GET"},
				{Object: "/me", Action: "PATCH"},
				{Object: "/me/password", Action: "PATCH"},
				{Object: "/me/notifications", Action: "GET"},
				{Object: "/me/notifications/read-all", Action: "PATCH"},
				{Object: "/me/notifications/:id", Action: "PATCH"},
			},
		},
		{
			Role:     constants.RoleAffiliate,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/affiliate/*", Action: "*"},
				{Object: "/me/affiliate-profile", Action: "GET"},
				{Object: "/me/affiliate-profile", Action: "PATCH"},
			},
		},
		{
			Role:     constants.RoleSupplier,
			Inherits: []string{memberRole},
			Policies: []Policy{
				{Object: "/supplier/*", Action: "*"},
				{Object: "/me/supplier-profile", Action: "GET"},
				{Object: "/me/supplier-profile", Action: "PATCH"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{memberRole},
			Policies: []Policy{{Object: "/admin/*", Action: "*"}},
		},
	}
}

// BootstrapBuiltinRoles 把库中预置角色的策略与继承关系对齐到代码定义，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		if err := s.syncPolicies(role, seed.Policies); err != nil {
			return err
		}
		if err := s.syncParents(role, seed.Inherits); err != nil {
			return err
		}
	}
	return nil
}

// ruleSet 对齐一类规则：多余的删除，缺失的补齐
type ruleSet struct {
	load   func() ([][]string, error)
	key    func(rule []string) (string, bool)
	remove func(rule []string) error
	add    func(key string) error
}

func (rs ruleSet) reconcile(want map[string]bool) error {
	existing, err := rs.load()
	if err != nil {
		return err
	}
	for _, rule := range existing {
		key, ok := rs.key(rule)
		if !ok {
			continue
		}
		if want[key] {
			delete(want, key)
			continue
		}
		if err := rs.remove(rule); err != nil {
			return err
		}
	}
	for key := range want {
		if err := rs.add(key); err != nil {
			return err
		}
	}
	return nil
}

const ruleKeySep = " "

func (s *Service) syncPolicies(role string, seeds []Policy) error {
	want := make(map[string]bool, len(seeds))
	for _, p := range seeds {
		action := NormalizeAction(p.Action)
		if action == "" {
			return fmt.Errorf("builtin policy of %s has no action", role)
		}
		want[NormalizeObject(p.Object)+ruleKeySep+action] = true
	}
	err := ruleSet{
		load: func() ([][]string, error) { return s.enforcer.GetFilteredPolicy(0, role) },
		key: func(rule []string) (string, bool) {
			if len(rule) < 3 {
				return "", false
			}
			return rule[1] + ruleKeySep + rule[2], true
		},
		remove: func(rule []string) error {
			_, err := s.enforcer.RemovePolicy(role, rule[1], rule[2])
			return err
		},
		add: func(key string) error {
			obj, act, _ := strings.Cut(key, ruleKeySep)
			_, err := s.enforcer.AddPolicy(role, obj, act)
			return err
		},
	}.reconcile(want)
	if err != nil {
		return fmt.Errorf("sync policies of %s: %w", role, err)
	}
	return nil
}

func (s *Service) syncParents(role string, inherits []string) error {
	want := make(map[string]bool, len(inherits))
	for _, parent := range inherits {
		parentRole, err := NormalizeRole(parent)
		if err != nil {
			return err
		}
		want[parentRole] = true
	}
	err := ruleSet{
		load: func() ([][]string, error) { return s.enforcer.GetFilteredGroupingPolicy(0, role) },
		key: func(rule []string) (string, bool) {
			if len(rule) < 2 {
				return "", false
			}
			return rule[1], true
		},
		remove: func(rule []string) error {
			_, err := s.enforcer.RemoveGroupingPolicy(role, rule[1])
			return err
		},
		add: func(parent string) error {
			_, err := s.enforcer.AddGroupingPolicy(role, parent)
			return err
		},
	}.reconcile(want)
	if err != nil {
		return fmt.Errorf("sync parents of %s: %w", role, err)
	}
	return nil
}
