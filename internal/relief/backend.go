package relief

// Backend is durable storage for whole collections, addressed by key.
// Values are opaque JSON documents; the Layer owns encoding.
type Backend interface {
	// Get returns the stored bytes for key. found is false if nothing has
	// been written under key yet.
	Get(key string) (data []byte, found bool, err error)

	// Put replaces the value stored under key.
	Put(key string, data []byte) error

	// Keys lists every key holding a value, sorted.
	Keys() ([]string, error)

	// Close releases any connection or file held by the backend.
	Close() error
}
