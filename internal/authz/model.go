package authz

import (
	"errors"
	"strings"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

// ErrRoleRequired 角色名为空
var ErrRoleRequired = errors.New("role is required")

// 主体 role:<角色>；资源是去掉 /api/v1 的 gin 路由模板，支持 keyMatch2 通配
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
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// Policy 一条 p 规则
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

func policyFromRule(rule []string) (Policy, bool) {
	if len(rule) < 3 {
		return Policy{}, false
	}
	return Policy{
		Subject: strings.TrimSpace(rule[0]),
		Object:  NormalizeObject(rule[1]),
		Action:  NormalizeAction(rule[2]),
	}, true
}

// NormalizeRole "Top Supplier" -> role:top_supplier
func NormalizeRole(role string) (string, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(role)), rolePrefix)
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 统一以 / 开头并去掉 /api/v1
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == apiV1Prefix {
		return "/"
	}
	if rest, ok := strings.CutPrefix(path, apiV1Prefix+"/"); ok {
		return "/" + rest
	}
	return path
}

func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
