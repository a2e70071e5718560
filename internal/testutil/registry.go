package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"relief-go/internal/relief"
)

// Env bundles a registry and authenticator over an in-memory backend with
// deterministic clock and IDs.
type Env struct {
	Backend  *FailingBackend
	Layer    *relief.Layer
	Clock    *StubClock
	IDs      *StubIDGenerator
	Registry *relief.Registry
	Session  *relief.Session
	Auth     *relief.Authenticator
}

// NewTestHasher returns a bcrypt hasher at the minimum cost.
func NewTestHasher() *relief.BcryptHasher {
	return relief.NewBcryptHasher(bcrypt.MinCost)
}

// NewTestEnv builds an Env using the restrict delete policy.
func NewTestEnv(t *testing.T) *Env {
	return NewTestEnvWithPolicy(t, relief.DeleteRestrict)
}

// NewTestEnvWithPolicy builds an Env with the given household delete policy.
func NewTestEnvWithPolicy(t *testing.T, policy relief.DeletePolicy) *Env {
	t.Helper()
	return NewTestEnvOnBackend(t, NewFailingBackend(), policy)
}

// NewTestEnvOnBackend builds an Env over an existing backend, as a restarted
// process would see it.
func NewTestEnvOnBackend(t *testing.T, b *FailingBackend, policy relief.DeletePolicy) *Env {
	t.Helper()

	layer := relief.NewLayer(b, nil)
	clock := FixedClock()
	ids := NewStubIDGenerator()
	reg := relief.NewRegistry(layer, relief.RegistryOptions{
		Clock:           clock,
		IDs:             ids,
		HouseholdDelete: policy,
	})
	session := relief.NewSession(layer)
	auth := relief.NewAuthenticator(reg, session, relief.AuthOptions{Hasher: NewTestHasher()})

	t.Cleanup(func() { layer.Close() })

	return &Env{
		Backend:  b,
		Layer:    layer,
		Clock:    clock,
		IDs:      ids,
		Registry: reg,
		Session:  session,
		Auth:     auth,
	}
}
