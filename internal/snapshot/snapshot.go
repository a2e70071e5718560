// Package snapshot exports and imports every registry collection as a single
// passphrase-encrypted bundle.
//
// A bundle is an age file (scrypt recipient) whose plaintext is a JSON object
// holding the raw value of each stored key. The session slot is never
// exported: a restored store starts logged out.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"filippo.io/age"

	"relief-go/internal/relief"
)

// FormatVersion is written into every bundle. Import refuses other versions.
const FormatVersion = 1

var (
	// ErrWrongPassphrase is returned when the bundle cannot be decrypted with
	// the given passphrase.
	ErrWrongPassphrase = errors.New("wrong passphrase")

	// ErrInvalidBundle is returned when the decrypted content is not a bundle
	// this version can restore.
	ErrInvalidBundle = errors.New("invalid snapshot bundle")
)

// Bundle is the plaintext content of a snapshot.
type Bundle struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"createdAt"`
	Entries   map[string]json.RawMessage `json:"entries"`
}

// Options tunes Export and Import. WorkFactor is the scrypt log2(N); zero
// keeps age's default. Tests lower it to stay fast.
type Options struct {
	WorkFactor int
	Clock      relief.Clock
}

// exportable lists the keys a bundle may carry.
func exportable() []string {
	keys := make([]string, 0, len(relief.Keys))
	for _, k := range relief.Keys {
		if k != relief.KeySession {
			keys = append(keys, k)
		}
	}
	return keys
}

// Export writes every stored collection to w as an encrypted bundle and
// returns how many keys it carries. Keys that were never written are skipped.
// A collection the backend fails to return aborts the export before anything
// is written to w.
func Export(w io.Writer, layer *relief.Layer, passphrase string, opts Options) (int, error) {
	if opts.Clock == nil {
		opts.Clock = relief.RealClock{}
	}

	b := Bundle{
		Version:   FormatVersion,
		CreatedAt: opts.Clock.Now().UTC(),
		Entries:   map[string]json.RawMessage{},
	}
	for _, key := range exportable() {
		raw, found, err := layer.Fetch(key)
		if err != nil {
			return 0, err
		}
		// Corrupt values already read as empty collections; they are not carried.
		if found && json.Valid(raw) {
			b.Entries[key] = raw
		}
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return 0, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if opts.WorkFactor > 0 {
		recipient.SetWorkFactor(opts.WorkFactor)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return 0, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if err := json.NewEncoder(encWriter).Encode(b); err != nil {
		return 0, fmt.Errorf("encoding bundle: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return 0, fmt.Errorf("finalizing encryption: %w", err)
	}
	return len(b.Entries), nil
}

// Read decrypts and decodes a bundle without touching any store.
func Read(r io.Reader, passphrase string) (*Bundle, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		if errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	var b Bundle
	if err := json.NewDecoder(decReader).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidBundle, err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrInvalidBundle, b.Version, FormatVersion)
	}

	allowed := map[string]bool{}
	for _, k := range exportable() {
		allowed[k] = true
	}
	for k, raw := range b.Entries {
		if !allowed[k] {
			return nil, fmt.Errorf("%w: unexpected key %q", ErrInvalidBundle, k)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: key %q is not valid JSON", ErrInvalidBundle, k)
		}
	}
	return &b, nil
}

// Import restores a bundle into layer key by key, replacing the current
// values. Keys absent from the bundle are left untouched. Nothing is written
// unless the whole bundle decrypts and validates. Persistence warnings are
// joined into the returned error.
func Import(r io.Reader, layer *relief.Layer, passphrase string) (int, error) {
	b, err := Read(r, passphrase)
	if err != nil {
		return 0, err
	}

	var errs []error
	n := 0
	for _, key := range exportable() {
		raw, ok := b.Entries[key]
		if !ok {
			continue
		}
		errs = append(errs, layer.WriteRaw(key, raw))
		n++
	}
	return n, errors.Join(errs...)
}
