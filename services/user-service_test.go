package services

import (
	"context"
	"testing"
)

func TestAdminCreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := sessionFor("a1", "Responsable Technique")

	in := UserInput{Email: "New@Example.com", Name: "Nadia", Role: "Stagiaire", Department: "Technique", Password: "sixsix"}
	user, err := env.users.CreateUser(ctx, admin, in)
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "new@example.com" || user.AuthID == "" {
		t.Fatalf("user = %+v", user)
	}

	session, err := env.auth.SignIn(ctx, "new@example.com", "sixsix")
	if err != nil {
		t.Fatalf("new user cannot sign in: %v", err)
	}
	if session.UserID != user.ID || session.Profile.Name != "Nadia" {
		t.Fatalf("session = %+v", session)
	}

	_, err = env.users.CreateUser(ctx, admin, in)
	mustErr(t, err, ErrInvalidInput)
}

func TestCreateUserRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := sessionFor("a1", "Manager Technique")
	full := UserInput{Email: "x@example.com", Name: "X", Role: "Dev", Department: "Tech", Password: "secret1"}

	_, err := env.users.CreateUser(ctx, sessionFor("u1", "Stagiaire"), full)
	mustErr(t, err, ErrForbidden)

	short := full
	short.Password = "12345"
	_, err = env.users.CreateUser(ctx, admin, short)
	mustErr(t, err, ErrInvalidInput)

	missing := full
	missing.Department = " "
	_, err = env.users.CreateUser(ctx, admin, missing)
	mustErr(t, err, ErrInvalidInput)

	env.users.SetBlackList(map[string]bool{"secret1": true})
	_, err = env.users.CreateUser(ctx, admin, full)
	mustErr(t, err, ErrInvalidInput)
}

func TestUpdateProfileChangesPassword(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "u1", "a@example.com", "secret1", "Dev", true)
	ctx := context.Background()
	session, err := env.auth.SignIn(ctx, "a@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.users.UpdateProfile(ctx, session, ProfileInput{Name: "A", Password: "123"})
	mustErr(t, err, ErrInvalidInput)

	avatar := "https://i.pravatar.cc/100?img=1"
	saved, err := env.users.UpdateProfile(ctx, session, ProfileInput{Name: "Amine", Role: "Dev", Department: "Tech", Avatar: &avatar, Password: "newsecret"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Name != "Amine" || saved.Avatar == nil || *saved.Avatar != avatar {
		t.Fatalf("saved = %+v", saved)
	}
	if got, _ := env.sessions.Get(session.ID); got.Profile.Name != "Amine" {
		t.Fatalf("session profile = %+v", got.Profile)
	}

	_, err = env.auth.SignIn(ctx, "a@example.com", "secret1")
	mustErr(t, err, ErrInvalidCredentials)
	if _, err := env.auth.SignIn(ctx, "a@example.com", "newsecret"); err != nil {
		t.Fatalf("sign in with new password: %v", err)
	}
}

func TestUpdateProfileRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "u1", "dev@example.com", "secret1", "Dev", true)
	env.addAccount(t, "a1", "boss@example.com", "secret1", "Manager Technique", true)
	member, err := env.auth.SignIn(ctx, "dev@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	admin, err := env.auth.SignIn(ctx, "boss@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		session  string
		role     string
		want     error
		wantRole string
	}{
		{name: "member cannot take admin role", session: member.ID, role: "Manager Technique", want: ErrForbidden, wantRole: "Dev"},
		{name: "member cannot change role", session: member.ID, role: "Lead", want: ErrForbidden, wantRole: "Dev"},
		{name: "member keeps own role", session: member.ID, role: "Dev", wantRole: "Dev"},
		{name: "blank role keeps stored", session: member.ID, role: "", wantRole: "Dev"},
		{name: "admin keeps admin role", session: admin.ID, role: "Manager Technique", wantRole: "Manager Technique"},
		{name: "admin changes role", session: admin.ID, role: "Responsable Technique", wantRole: "Responsable Technique"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := env.sessions.Get(tt.session)
			if err != nil {
				t.Fatal(err)
			}
			_, err = env.users.UpdateProfile(ctx, session, ProfileInput{Name: "Name", Role: tt.role, Department: "Technique"})
			if tt.want != nil {
				mustErr(t, err, tt.want)
			} else if err != nil {
				t.Fatalf("UpdateProfile() err = %v", err)
			}

			got, err := env.sessions.Get(tt.session)
			if err != nil || got.Profile.Role != tt.wantRole {
				t.Fatalf("session role = %q, %v, want %q", got.Profile.Role, err, tt.wantRole)
			}
			stored, err := env.stores.Users.Get(ctx, got.UserID)
			if err != nil || stored == nil || stored.Role != tt.wantRole {
				t.Fatalf("stored = %+v, %v", stored, err)
			}
		})
	}
}

func TestUpdateProfileWithoutRow(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.UpdateProfile(context.Background(), sessionFor("ghost", ""), ProfileInput{Name: "G"})
	mustErr(t, err, ErrNotConfirmed)
}

func TestAdminUpdateAndDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addAccount(t, "u1", "a@example.com", "secret1", "Dev", true)
	admin := sessionFor("a1", "Responsable Marketing")

	member, err := env.auth.SignIn(ctx, "a@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := env.users.UpdateUser(ctx, admin, "u1", UserInput{Name: "Ali", Role: "Lead", Department: "Marketing"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Department != "Marketing" || updated.Email != "a@example.com" {
		t.Fatalf("updated = %+v", updated)
	}
	_, err = env.users.UpdateUser(ctx, admin, "nobody", UserInput{Name: "n", Role: "r", Department: "d"})
	mustErr(t, err, ErrNotFound)

	mustErr(t, env.users.DeleteUser(ctx, admin, "a1"), ErrInvalidInput)
	if err := env.users.DeleteUser(ctx, admin, "u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.sessions.Get(member.ID); err == nil {
		t.Fatal("deleted user's session must be closed")
	}
	_, err = env.auth.SignIn(ctx, "a@example.com", "secret1")
	mustErr(t, err, ErrInvalidCredentials)

	if users := env.users.List(ctx); len(users) != 0 {
		t.Fatalf("users left: %+v", users)
	}
	mustErr(t, env.users.DeleteUser(ctx, admin, "u1"), ErrNotFound)
}
