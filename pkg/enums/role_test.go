package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" fisc su ")
	if err != nil || role != RoleFiscSU {
		t.Fatalf("expected Fisc SU, got %q err=%v", role, err)
	}
	if _, err := ParseRole("General"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestRoleHelpers(t *testing.T) {
	if !RoleAdmLocal.IsAdmin() || !RoleAdmGeral.IsAdmin() {
		t.Fatalf("admin roles should report IsAdmin")
	}
	if RoleFiscSU.IsAdmin() || RoleMilitar.IsAdmin() {
		t.Fatalf("non admin roles should not report IsAdmin")
	}
	if !RoleFiscSU.IsSupervisor() {
		t.Fatalf("Fisc SU should be a supervisor")
	}
}

func TestAccountStatusAndAuditTypes(t *testing.T) {
	if _, err := ParseAccountStatus("pending"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if AccountStatus("archived").IsValid() {
		t.Fatalf("archived should be invalid")
	}
	if !EventAccountRegistered.IsValid() || !AggregateSector.IsValid() {
		t.Fatalf("expected known audit types to be valid")
	}
	if _, err := ParseAuditEventType("order_created"); err == nil {
		t.Fatalf("expected error for foreign event type")
	}
}
