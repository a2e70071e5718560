package relief

import (
	"errors"

	"relief-go/internal/model"
)

// Default administrator created on an empty user collection.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminQuestion = "What was the name of your first pet?"
	DefaultAdminAnswer   = "max"
)

// AuthOptions configures NewAuthenticator. A nil Hasher selects bcrypt at
// the default cost.
type AuthOptions struct {
	Hasher            CredentialHasher
	Logger            Logger
	MinPasswordLength int
}

// Authenticator owns login, registration and password recovery over the
// user repository, and keeps the Session up to date.
type Authenticator struct {
	users   *Repository[model.User, *model.User]
	session *Session
	hasher  CredentialHasher
	logger  Logger
	minLen  int
}

// NewAuthenticator creates an Authenticator over the registry's users.
func NewAuthenticator(reg *Registry, session *Session, opts AuthOptions) *Authenticator {
	if opts.Hasher == nil {
		opts.Hasher = NewBcryptHasher(0)
	}
	if opts.Logger == nil {
		opts.Logger = NewNopLogger()
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = DefaultMinPasswordLength
	}
	return &Authenticator{
		users:   reg.Users,
		session: session,
		hasher:  opts.Hasher,
		logger:  opts.Logger,
		minLen:  opts.MinPasswordLength,
	}
}

// Session returns the session slot the authenticator writes to.
func (a *Authenticator) Session() *Session { return a.session }

// MinPasswordLength is the length new passwords are checked against.
func (a *Authenticator) MinPasswordLength() int { return a.minLen }

// Login checks the credentials and, on success, makes the user current. A
// wrong password and an unknown username are indistinguishable to the
// caller. The returned user carries no credentials.
//
// A non-nil error together with ok=true only carries persistence warnings.
func (a *Authenticator) Login(username, password string) (model.User, bool, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return model.User{}, false, err
	}

	u, found := a.users.Find(func(u *model.User) bool { return u.Username == username })
	if !found {
		a.logger.Debug("login rejected", "username", username)
		return model.User{}, false, nil
	}
	ok, legacy := a.hasher.Verify(u.Password, password)
	if !ok {
		a.logger.Debug("login rejected", "username", username)
		return model.User{}, false, nil
	}

	var errs []error
	if legacy {
		errs = append(errs, a.upgradeCredentials(u.ID, password, ""))
	}
	errs = append(errs, a.session.set(u))
	a.logger.Info("user logged in", "username", username)

	u.Password, u.SecurityAnswer = "", ""
	return u, true, errors.Join(errs...)
}

// Logout clears the session.
func (a *Authenticator) Logout() error {
	return a.session.Clear()
}

// Registration is the field set accepted by Register. Role defaults to
// volunteer.
type Registration struct {
	Username         string
	Password         string
	Name             string
	Email            string
	Role             model.Role
	SecurityQuestion string
	SecurityAnswer   string
}

// Register creates a user. A taken username yields a *ConflictError and
// nothing is written. Password strength rules are the caller's; only the
// bcrypt length limit is checked here.
func (a *Authenticator) Register(req Registration) (model.User, error) {
	if err := ValidateCredentials(req.Username, req.Password); err != nil {
		return model.User{}, err
	}
	if err := required("securityAnswer", req.SecurityAnswer); err != nil {
		return model.User{}, err
	}
	if _, taken := a.users.Find(func(u *model.User) bool { return u.Username == req.Username }); taken {
		return model.User{}, &ConflictError{Field: "username", Value: req.Username}
	}
	if req.Role == "" {
		req.Role = model.RoleVolunteer
	}

	pw, err := a.hasher.Hash(req.Password)
	if err != nil {
		return model.User{}, err
	}
	ans, err := a.hasher.Hash(normalizeAnswer(req.SecurityAnswer))
	if err != nil {
		return model.User{}, err
	}

	u, err := a.users.Create(model.User{
		Username:         req.Username,
		Password:         pw,
		Name:             req.Name,
		Email:            req.Email,
		Role:             req.Role,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   ans,
	})
	if err != nil && !IsWarning(err) {
		return model.User{}, err
	}
	a.logger.Info("user registered", "username", u.Username, "role", u.Role)
	u.Password, u.SecurityAnswer = "", ""
	return u, err
}

// SecurityQuestion returns the recovery question of the user.
func (a *Authenticator) SecurityQuestion(username string) (string, bool) {
	u, found := a.users.Find(func(u *model.User) bool { return u.Username == username })
	if !found {
		return "", false
	}
	return u.SecurityQuestion, true
}

// RecoverPassword replaces the password when answer matches the stored
// security answer, ignoring case. It reports ok=false for an unknown user
// or a wrong answer. Minimum length and confirmation are the caller's
// concern (see ValidateNewPassword).
func (a *Authenticator) RecoverPassword(username, answer, newPassword string) (bool, error) {
	if err := required("password", newPassword); err != nil {
		return false, err
	}
	u, found := a.users.Find(func(u *model.User) bool { return u.Username == username })
	if !found {
		return false, nil
	}

	stored := u.SecurityAnswer
	if !IsHashed(stored) {
		stored = normalizeAnswer(stored)
	}
	ok, legacy := a.hasher.Verify(stored, normalizeAnswer(answer))
	if !ok {
		a.logger.Debug("recovery rejected", "username", username)
		return false, nil
	}

	reanswer := ""
	if legacy {
		reanswer = answer
	}
	err := a.upgradeCredentials(u.ID, newPassword, reanswer)
	if err != nil && !IsWarning(err) {
		return false, err
	}
	a.logger.Info("password recovered", "username", username)
	return true, err
}

// upgradeCredentials stores password, and answer when non-empty, as hashes.
func (a *Authenticator) upgradeCredentials(id, password, answer string) error {
	pw, err := a.hasher.Hash(password)
	if err != nil {
		return err
	}
	var ans string
	if answer != "" {
		if ans, err = a.hasher.Hash(normalizeAnswer(answer)); err != nil {
			return err
		}
	}
	_, _, err = a.users.Update(id, func(u *model.User) {
		u.Password = pw
		if ans != "" {
			u.SecurityAnswer = ans
		}
	})
	return err
}

// EnsureDefaultAdmin creates the default administrator when no user exists.
// It reports whether an account was created and never creates a second one.
// A user collection that cannot be read is an error, not an empty store.
func (a *Authenticator) EnsureDefaultAdmin() (bool, error) {
	users, err := a.users.Load()
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	pw, err := a.hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return false, err
	}
	ans, err := a.hasher.Hash(normalizeAnswer(DefaultAdminAnswer))
	if err != nil {
		return false, err
	}
	_, err = a.users.Create(model.User{
		Username:         DefaultAdminUsername,
		Password:         pw,
		Name:             "System Administrator",
		Email:            "admin@community.local",
		Role:             model.RoleAdmin,
		SecurityQuestion: DefaultAdminQuestion,
		SecurityAnswer:   ans,
	})
	if err != nil && !IsWarning(err) {
		return false, err
	}
	a.logger.Info("created default administrator", "username", DefaultAdminUsername)
	return true, err
}
