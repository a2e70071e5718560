package relief_test

import (
	"errors"
	"strings"
	"testing"

	"relief-go/internal/model"
	"relief-go/internal/relief"
	"relief-go/internal/testutil"
)

func TestAuth_EnsureDefaultAdmin(t *testing.T) {
	env := testutil.NewTestEnv(t)

	created, err := env.Auth.EnsureDefaultAdmin()
	if err != nil || !created {
		t.Fatalf("EnsureDefaultAdmin() = %v, %v; want true, nil", created, err)
	}
	created, err = env.Auth.EnsureDefaultAdmin()
	if err != nil || created {
		t.Fatalf("second EnsureDefaultAdmin() = %v, %v; want false, nil", created, err)
	}

	users := env.Registry.Users.List()
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	admin := users[0]
	if admin.Username != relief.DefaultAdminUsername || admin.Role != model.RoleAdmin {
		t.Errorf("admin = %+v", admin)
	}
	if !relief.IsHashed(admin.Password) || !relief.IsHashed(admin.SecurityAnswer) {
		t.Error("default admin credentials are stored in plaintext")
	}

	u, ok, err := env.Auth.Login(relief.DefaultAdminUsername, relief.DefaultAdminPassword)
	if err != nil || !ok {
		t.Fatalf("Login(admin) = %v, %v", ok, err)
	}
	if u.Role != model.RoleAdmin || u.Password != "" || u.SecurityAnswer != "" {
		t.Errorf("Login() user = %+v, want admin without credentials", u)
	}
}

func TestAuth_EnsureDefaultAdminSkipsPopulatedStore(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.Register(relief.Registration{
		Username: "maria", Password: "secret1", SecurityQuestion: "q", SecurityAnswer: "a",
	}); err != nil {
		t.Fatal(err)
	}
	created, err := env.Auth.EnsureDefaultAdmin()
	if err != nil || created {
		t.Errorf("EnsureDefaultAdmin() = %v, %v; want false, nil", created, err)
	}
}

func TestAuth_EnsureDefaultAdminBackendReadFailure(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Auth.Register(relief.Registration{
		Username: "ana", Password: "secret1", SecurityQuestion: "q", SecurityAnswer: "a",
	}); err != nil {
		t.Fatal(err)
	}

	restarted := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	env.Backend.FailGets(true)
	created, err := restarted.Auth.EnsureDefaultAdmin()
	if created || !errors.Is(err, relief.ErrUnavailable) {
		t.Fatalf("EnsureDefaultAdmin() = %v, %v; want false, ErrUnavailable", created, err)
	}

	env.Backend.FailGets(false)
	after := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	if got := len(after.Registry.Users.List()); got != 2 {
		t.Errorf("users after the outage = %d, want 2", got)
	}
}

func TestAuth_Login(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantOK   bool
		wantErr  error
	}{
		{"valid", "admin", "admin123", true, nil},
		{"wrong password", "admin", "admin124", false, nil},
		{"unknown user", "nobody", "admin123", false, nil},
		{"username is case sensitive", "Admin", "admin123", false, nil},
		{"empty username", "", "admin123", false, relief.ErrValidation},
		{"empty password", "admin", "", false, relief.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := env.Auth.Login(tt.username, tt.password)
			if ok != tt.wantOK {
				t.Errorf("Login() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("Login() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuth_SessionSurvivesRestart(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := env.Auth.Login("admin", "admin123"); err != nil || !ok {
		t.Fatalf("Login() = %v, %v", ok, err)
	}

	raw, ok := env.Layer.Raw(relief.KeySession)
	if !ok {
		t.Fatal("session not stored")
	}
	admin, _ := env.Registry.Users.Find(func(u *model.User) bool { return u.Username == "admin" })
	if strings.Contains(string(raw), admin.Password) || strings.Contains(string(raw), admin.SecurityAnswer) {
		t.Errorf("stored session carries credentials: %s", raw)
	}

	restarted := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	cur, ok := restarted.Session.Current()
	if !ok || cur.Username != "admin" || cur.ID != admin.ID {
		t.Fatalf("restored session = %+v, %v", cur, ok)
	}

	if err := restarted.Auth.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := restarted.Session.Current(); ok {
		t.Error("session still set after Logout()")
	}
	again := testutil.NewTestEnvOnBackend(t, env.Backend, relief.DeleteRestrict)
	if _, ok := again.Session.Current(); ok {
		t.Error("logout did not persist")
	}
	if err := again.Auth.Logout(); err != nil {
		t.Errorf("Logout() with nobody logged in: %v", err)
	}
}

func TestAuth_CorruptSessionStartsEmpty(t *testing.T) {
	b := testutil.NewFailingBackend()
	if err := b.Put(relief.KeySession, []byte(`{"id":`)); err != nil {
		t.Fatal(err)
	}
	env := testutil.NewTestEnvOnBackend(t, b, relief.DeleteRestrict)
	if _, ok := env.Session.Current(); ok {
		t.Error("corrupt session restored a user")
	}
}

func TestAuth_Register(t *testing.T) {
	env := testutil.NewTestEnv(t)

	u, err := env.Auth.Register(relief.Registration{
		Username:         "maria",
		Password:         "secret1",
		Name:             "Maria Lopez",
		SecurityQuestion: "Favourite colour?",
		SecurityAnswer:   "Blue",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Role != model.RoleVolunteer {
		t.Errorf("Role = %q, want volunteer", u.Role)
	}
	if u.Password != "" || u.SecurityAnswer != "" {
		t.Error("Register() returned credentials")
	}

	stored, _ := env.Registry.Users.Get(u.ID)
	if !relief.IsHashed(stored.Password) || !relief.IsHashed(stored.SecurityAnswer) {
		t.Error("credentials stored in plaintext")
	}

	if _, ok, err := env.Auth.Login("maria", "secret1"); err != nil || !ok {
		t.Errorf("Login() after Register() = %v, %v", ok, err)
	}

	_, err = env.Auth.Register(relief.Registration{
		Username: "maria", Password: "other12", SecurityQuestion: "q", SecurityAnswer: "a",
	})
	if !errors.Is(err, relief.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}

	_, err = env.Auth.Register(relief.Registration{
		Username: "long", Password: strings.Repeat("x", 73), SecurityQuestion: "q", SecurityAnswer: "a",
	})
	if !errors.Is(err, relief.ErrValidation) {
		t.Errorf("Register() with 73-byte password error = %v, want ErrValidation", err)
	}
	if n := len(env.Registry.Users.List()); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}
}

func TestAuth_RecoverPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatal(err)
	}

	q, ok := env.Auth.SecurityQuestion("admin")
	if !ok || q != relief.DefaultAdminQuestion {
		t.Errorf("SecurityQuestion() = %q, %v", q, ok)
	}
	if _, ok := env.Auth.SecurityQuestion("nobody"); ok {
		t.Error("SecurityQuestion(nobody) found a user")
	}

	if ok, err := env.Auth.RecoverPassword("admin", "rex", "newpass1"); err != nil || ok {
		t.Errorf("wrong answer = %v, %v; want false, nil", ok, err)
	}
	if ok, err := env.Auth.RecoverPassword("nobody", "max", "newpass1"); err != nil || ok {
		t.Errorf("unknown user = %v, %v; want false, nil", ok, err)
	}
	if _, err := env.Auth.RecoverPassword("admin", "max", ""); !errors.Is(err, relief.ErrValidation) {
		t.Errorf("empty password error = %v, want ErrValidation", err)
	}

	ok, err := env.Auth.RecoverPassword("admin", "MAX", "newpass1")
	if err != nil || !ok {
		t.Fatalf("RecoverPassword() = %v, %v", ok, err)
	}
	if _, ok, _ := env.Auth.Login("admin", "admin123"); ok {
		t.Error("old password still accepted")
	}
	if _, ok, err := env.Auth.Login("admin", "newpass1"); err != nil || !ok {
		t.Errorf("Login() with new password = %v, %v", ok, err)
	}
}

func TestAuth_LegacyPlaintextUpgrade(t *testing.T) {
	env := testutil.NewTestEnv(t)
	legacy, err := env.Registry.Users.Create(model.User{
		Username:         "old",
		Password:         "plain1",
		Role:             model.RoleCoordinator,
		SecurityQuestion: "Favourite colour?",
		SecurityAnswer:   "Blue",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := env.Auth.Login("old", "PLAIN1"); ok {
		t.Error("legacy password matched case-insensitively")
	}
	if _, ok, err := env.Auth.Login("old", "plain1"); err != nil || !ok {
		t.Fatalf("legacy Login() = %v, %v", ok, err)
	}
	stored, _ := env.Registry.Users.Get(legacy.ID)
	if !relief.IsHashed(stored.Password) {
		t.Error("password not rehashed after login")
	}
	if stored.SecurityAnswer != "Blue" {
		t.Errorf("answer changed on login: %q", stored.SecurityAnswer)
	}

	if ok, err := env.Auth.RecoverPassword("old", "bLUE", "fresh12"); err != nil || !ok {
		t.Fatalf("legacy RecoverPassword() = %v, %v", ok, err)
	}
	stored, _ = env.Registry.Users.Get(legacy.ID)
	if !relief.IsHashed(stored.SecurityAnswer) {
		t.Error("answer not rehashed after recovery")
	}
	if ok, err := env.Auth.RecoverPassword("old", "blue", "fresh34"); err != nil || !ok {
		t.Errorf("RecoverPassword() against rehashed answer = %v, %v", ok, err)
	}
}

func TestAuth_LoginWithPersistenceFailure(t *testing.T) {
	env := testutil.NewTestEnv(t)
	if _, err := env.Auth.EnsureDefaultAdmin(); err != nil {
		t.Fatal(err)
	}
	env.Backend.FailPuts(true)

	u, ok, err := env.Auth.Login("admin", "admin123")
	if !ok || !relief.IsWarning(err) {
		t.Fatalf("Login() = %v, %v; want ok with warning", ok, err)
	}
	if cur, ok := env.Session.Current(); !ok || cur.ID != u.ID {
		t.Error("session not set in memory")
	}
}

func TestValidateNewPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		min      int
		wantErr  bool
	}{
		{"valid", "secret1", "secret1", 0, false},
		{"exactly minimum", "abcdef", "abcdef", 6, false},
		{"too short", "abc", "abc", 6, true},
		{"custom minimum", "abcdefg", "abcdefg", 8, true},
		{"mismatch", "secret1", "secret2", 0, true},
		{"empty", "", "", 0, true},
		{"multibyte counts runes", "ñandúes", "ñandúes", 7, false},
		{"over bcrypt limit", strings.Repeat("a", 73), strings.Repeat("a", 73), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := relief.ValidateNewPassword(tt.password, tt.confirm, tt.min)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNewPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, relief.ErrValidation) {
				t.Errorf("error %v is not ErrValidation", err)
			}
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	h := testutil.NewTestHasher()
	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatal(err)
	}
	if !relief.IsHashed(hash) {
		t.Errorf("IsHashed(%q) = false", hash)
	}

	tests := []struct {
		name       string
		stored     string
		secret     string
		wantOK     bool
		wantLegacy bool
	}{
		{"hash match", hash, "secret", true, false},
		{"hash mismatch", hash, "Secret", false, false},
		{"plaintext match", "secret", "secret", true, true},
		{"plaintext mismatch", "secret", "secreT", false, true},
		{"empty stored", "", "secret", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, legacy := h.Verify(tt.stored, tt.secret)
			if ok != tt.wantOK || legacy != tt.wantLegacy {
				t.Errorf("Verify() = %v, %v; want %v, %v", ok, legacy, tt.wantOK, tt.wantLegacy)
			}
		})
	}

	if got := relief.NewBcryptHasher(100).Cost; got != 10 {
		t.Errorf("NewBcryptHasher(100).Cost = %d, want default 10", got)
	}
}
