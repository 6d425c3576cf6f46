package models

import (
	"context"
	"testing"
)

func TestUserLifecycle(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	admin, err := EnsureSeedSuperadmin(ctx, "bootstrap-secret")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != UserRoleSuperadmin {
		t.Fatalf("seed role = %q", admin.Role)
	}

	// Second call is a no-op, not a duplicate.
	again, err := EnsureSeedSuperadmin(ctx, "different-password")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != admin.ID {
		t.Error("seed superadmin duplicated")
	}

	user, err := CreateUser(ctx, &NewUser{Username: "clerk", Password: "pw123456", Role: "employee"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateUser(ctx, &NewUser{Username: "clerk", Password: "pw123456"}); err == nil {
		t.Error("duplicate username accepted")
	}
	// Role can never be self-assigned superadmin.
	sneaky, err := CreateUser(ctx, &NewUser{Username: "sneaky", Password: "pw123456", Role: "superadmin"})
	if err != nil {
		t.Fatal(err)
	}
	if sneaky.Role == UserRoleSuperadmin {
		t.Error("created user got superadmin role")
	}

	if _, err := Authenticate(ctx, "clerk", "pw123456"); err != nil {
		t.Errorf("valid login rejected: %v", err)
	}
	if _, err := Authenticate(ctx, "clerk", "wrong"); err == nil {
		t.Error("invalid password accepted")
	}

	actor := admin.Actor()
	if _, err := DeleteUser(ctx, actor, admin.ID); err == nil {
		t.Error("actor deleted itself")
	}
	if _, err := DeleteUser(ctx, user.Actor(), admin.ID); err == nil {
		t.Error("seed superadmin deleted")
	}
	if _, err := DeleteUser(ctx, actor, user.ID); err != nil {
		t.Errorf("legitimate delete failed: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, &NewUser{Username: "nurse", Password: "original1", Role: "employee"})
	if err != nil {
		t.Fatal(err)
	}
	actor := user.Actor()

	if err := ChangePassword(ctx, actor, "wrong", "newpass12"); err == nil {
		t.Error("change accepted with wrong old password")
	}
	if err := ChangePassword(ctx, actor, "original1", "newpass12"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if _, err := Authenticate(ctx, "nurse", "newpass12"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := Authenticate(ctx, "nurse", "original1"); err == nil {
		t.Error("old password still valid")
	}
}
