package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestEnforceRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		role, path, method string
		want               bool
	}{
		{"affiliate", "/api/v1/affiliate/offers/3/join", "POST", true},
		{"affiliate", "/api/v1/affiliate/balance", "get", true},
		{"affiliate", "/api/v1/supplier/offers", "GET", false},
		{"affiliate", "/api/v1/admin/dashboard", "GET", false},
		{"supplier", "/api/v1/supplier/events/9", "PATCH", true},
		{"supplier", "/api/v1/affiliate/payouts", "POST", false},
		{"admin", "/api/v1/admin/payouts/1", "PATCH", true},
		{"admin", "/api/v1/affiliate/balance", "GET", false},
		{"admin", "/api/v1/me/notifications/5", "PATCH", true},
		{"supplier", "/api/v1/me", "GET", true},
		{"supplier", "/api/v1/me", "DELETE", false},
		{"guest", "/api/v1/me", "GET", false},
		{"affiliate", "/api/v1/me/password", "PATCH", true},
		{"supplier", "/api/v1/me", "PATCH", true},
		{"affiliate", "/api/v1/me/affiliate-profile", "PATCH", true},
		{"supplier", "/api/v1/me/affiliate-profile", "GET", false},
		{"supplier", "/api/v1/me/supplier-profile", "PATCH", true},
		{"admin", "/api/v1/me/supplier-profile", "GET", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.method, tc.path, err)
		}
		if allow != tc.want {
			t.Fatalf("%s %s %s: want %v got %v", tc.role, tc.method, tc.path, tc.want, allow)
		}
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	policies, err := svc.GetRolePolicies("affiliate")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	// affiliate 自身 3 条 + member 继承 6 条
	if len(policies) != 9 {
		t.Fatalf("want 9 policies got %d: %+v", len(policies), policies)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	want := []string{"role:admin", "role:affiliate", "role:member", "role:supplier"}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Fatalf("roles want %v got %v", want, roles)
	}
}

func TestNormalizeObjectAndRole(t *testing.T) {
	if got := NormalizeObject("/api/v1/admin/users"); got != "/admin/users" {
		t.Fatalf("unexpected object %q", got)
	}
	if got := NormalizeObject("api/v1"); got != "/" {
		t.Fatalf("unexpected object %q", got)
	}
	if got, _ := NormalizeRole(" Supplier "); got != "role:supplier" {
		t.Fatalf("unexpected role %q", got)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("empty role should fail")
	}
}

func TestBootstrapRemovesStalePolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if _, err := svc.enforcer.AddPolicy("role:affiliate", "/admin/*", "*"); err != nil {
		t.Fatalf("add stale policy failed: %v", err)
	}
	if _, err := svc.enforcer.AddGroupingPolicy("role:affiliate", "role:admin"); err != nil {
		t.Fatalf("add stale parent failed: %v", err)
	}
	if allow, _ := svc.EnforceRole("affiliate", "/api/v1/admin/dashboard", "GET"); !allow {
		t.Fatalf("stale policy should be effective before sync")
	}

	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if allow, _ := svc.EnforceRole("affiliate", "/api/v1/admin/dashboard", "GET"); allow {
		t.Fatalf("stale policy must be removed by sync")
	}
	if allow, _ := svc.EnforceRole("affiliate", "/api/v1/affiliate/balance", "GET"); !allow {
		t.Fatalf("builtin policy must survive sync")
	}
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceRole("admin", "/admin/users", "GET"); err != ErrUnavailable {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
	if _, err := svc.ListRoles(); err != ErrUnavailable {
		t.Fatalf("want ErrUnavailable got %v", err)
	}
}
