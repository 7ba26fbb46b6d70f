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
	return svc
}

func TestEnforceUserWithBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.SetUserRoles(7, []string{"REGENTE"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}

	allow, err := svc.EnforceUser(7, "/api/v1/portal/form/submit", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("regente should submit the form")
	}

	// regente hereda lo de supervisor
	allow, err = svc.EnforceUser(7, "/api/v1/portal/entregas", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("regente should read the history")
	}
}

func TestSupervisorCannotSubmit(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.SetUserRoles(9, []string{"SUPERVISOR"}); err != nil {
		t.Fatalf("set user roles failed: %v", err)
	}

	allow, err := svc.EnforceUser(9, "/api/v1/portal/form/submit", "POST")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("supervisor must not submit the form")
	}

	allow, err = svc.EnforceUser(9, "/api/v1/portal/entregas", "GET")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("supervisor should read the history")
	}
}

func TestSetUserRolesReplaces(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.SetUserRoles(3, []string{"REGENTE"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := svc.SetUserRoles(3, []string{"SUPERVISOR"}); err != nil {
		t.Fatalf("replace roles failed: %v", err)
	}

	roles, err := svc.GetUserRoles(3)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:supervisor" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	if err := svc.ClearUserRoles(3); err != nil {
		t.Fatalf("clear roles failed: %v", err)
	}
	roles, err = svc.GetUserRoles(3)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("roles should be cleared, got %v", roles)
	}
}
