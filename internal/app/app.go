package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"relief-go/internal/backend"
	"relief-go/internal/config"
	"relief-go/internal/model"
	"relief-go/internal/relief"
	"relief-go/internal/report"
	"relief-go/internal/snapshot"
)

// ErrNotLoggedIn is returned by commands that need a current user.
var ErrNotLoggedIn = errors.New("not logged in: run `relief login` first")

// Deps overrides the collaborators NewReliefAppWithBackend would otherwise
// create. Zero fields select the production implementations.
type Deps struct {
	Clock     relief.Clock
	IDs       relief.IDGenerator
	Hasher    relief.CredentialHasher
	Logger    relief.Logger
	ScryptLog int // scrypt work factor for snapshots; 0 keeps age's default
}

// ReliefApp is the application layer between the CLI and the registry.
// It constructs all dependencies from config, seeds the default
// administrator, and closes the backend and log file on Close.
type ReliefApp struct {
	cfg      *config.Config
	layer    *relief.Layer
	registry *relief.Registry
	auth     *relief.Authenticator
	reports  *report.Generator
	clock    relief.Clock
	logger   relief.Logger
	zlog     *zap.Logger
	logFile  *os.File
	scrypt   int
	op       *Outcome
}

// NewReliefApp creates a fully wired ReliefApp from the given config.
// operation names the CLI command being run (e.g. "household add").
// The caller must call Close when done.
func NewReliefApp(cfg *config.Config, operation string) (*ReliefApp, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	zlog, logFile, err := newLogger(cfg.Log, cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	b, err := backend.NewBackendFromConfig(cfg.Store)
	if err != nil {
		closeLog(zlog, logFile)
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Type, err)
	}

	a, err := NewReliefAppWithBackend(cfg, operation, b, Deps{Logger: newZapAdapter(zlog)})
	if err != nil {
		closeLog(zlog, logFile)
		return nil, err
	}
	a.zlog, a.logFile = zlog, logFile
	return a, nil
}

// NewReliefAppWithBackend wires a ReliefApp over an already opened backend.
// The backend is closed if wiring fails.
func NewReliefAppWithBackend(cfg *config.Config, operation string, b relief.Backend, deps Deps) (*ReliefApp, error) {
	policy, err := relief.ParseDeletePolicy(cfg.Integrity.HouseholdDelete)
	if err != nil {
		b.Close()
		return nil, err
	}
	if deps.Clock == nil {
		deps.Clock = relief.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = relief.NewNopLogger()
	}
	if deps.Hasher == nil {
		deps.Hasher = relief.NewBcryptHasher(cfg.Auth.BcryptCost)
	}

	layer := relief.NewLayer(b, deps.Logger)
	reg := relief.NewRegistry(layer, relief.RegistryOptions{
		Clock:           deps.Clock,
		IDs:             deps.IDs,
		Logger:          deps.Logger,
		HouseholdDelete: policy,
	})
	auth := relief.NewAuthenticator(reg, relief.NewSession(layer), relief.AuthOptions{
		Hasher:            deps.Hasher,
		Logger:            deps.Logger,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
	})

	created, err := auth.EnsureDefaultAdmin()
	switch {
	case err != nil && !relief.IsWarning(err):
		layer.Close()
		return nil, fmt.Errorf("seeding default administrator: %w", err)
	case err != nil:
		deps.Logger.Warn("default administrator not persisted", "error", err)
	case created:
		deps.Logger.Warn("created default administrator; change its password",
			"username", relief.DefaultAdminUsername)
	}

	return &ReliefApp{
		cfg:      cfg,
		layer:    layer,
		registry: reg,
		auth:     auth,
		reports:  report.NewGenerator(reg, deps.Clock),
		clock:    deps.Clock,
		logger:   deps.Logger,
		scrypt:   deps.ScryptLog,
		op:       NewOutcome(operation),
	}, nil
}

// Registry returns the entity registry.
func (a *ReliefApp) Registry() *relief.Registry { return a.registry }

// Auth returns the authenticator.
func (a *ReliefApp) Auth() *relief.Authenticator { return a.auth }

// Now returns the current time from the app clock.
func (a *ReliefApp) Now() time.Time { return a.clock.Now() }

// Outcome returns the outcome of the running operation.
func (a *ReliefApp) Outcome() *Outcome { return a.op }

// Logger returns the application logger.
func (a *ReliefApp) Logger() relief.Logger { return a.logger }

// RequireUser returns the logged-in user or ErrNotLoggedIn.
func (a *ReliefApp) RequireUser() (model.User, error) {
	u, ok := a.auth.Session().Current()
	if !ok {
		return model.User{}, ErrNotLoggedIn
	}
	return u, nil
}

// WriteReport renders one report to path.
func (a *ReliefApp) WriteReport(kind report.Kind, path string) error {
	return a.reports.WriteFile(path, kind)
}

// WriteAllReports renders every non-empty report into dir.
func (a *ReliefApp) WriteAllReports(dir string) ([]string, error) {
	return a.reports.GenerateAll(dir)
}

// Export writes an encrypted snapshot of every collection to path. The file
// is created with mode 0600 and must not exist yet.
func (a *ReliefApp) Export(path, passphrase string) (int, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return 0, fmt.Errorf("creating snapshot file: %w", err)
	}

	n, err := snapshot.Export(f, a.layer, passphrase, snapshot.Options{WorkFactor: a.scrypt, Clock: a.clock})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing snapshot file: %w", cerr)
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	a.logger.Info("exported snapshot", "path", path, "keys", n)
	return n, nil
}

// Import restores the snapshot at path, replacing the collections it carries.
func (a *ReliefApp) Import(path, passphrase string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	n, err := snapshot.Import(f, a.layer, passphrase)
	if err != nil && !relief.IsWarning(err) {
		return 0, err
	}
	a.logger.Info("imported snapshot", "path", path, "keys", n)
	return n, err
}

// Close closes the backend and the log file.
func (a *ReliefApp) Close() error {
	var firstErr error
	if err := a.layer.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	closeLog(a.zlog, a.logFile)
	return firstErr
}

func closeLog(l *zap.Logger, f *os.File) {
	if l != nil {
		// stderr does not support Sync everywhere.
		_ = l.Sync()
	}
	if f != nil {
		f.Close()
	}
}
