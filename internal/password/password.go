// Package password implements the process-scoped secret the AES layer
// derives keys from. It is deliberately not a package-level global: the
// folder engine receives a *Store as a parameter, per the "process-wide
// password" design note — a host that needs a global wraps one Store
// itself.
package password

import "sync"

// Store holds a single UTF-16LE-encoded password. The zero value has no
// password set.
type Store struct {
	mu     sync.Mutex
	secret []byte
}

// Set stores password as UTF-16LE code units, zeroing any previous
// secret first. Set with an empty slice is equivalent to Clear.
func (s *Store) Set(utf16le []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	zero(s.secret)

	if len(utf16le) == 0 {
		s.secret = nil

		return
	}

	s.secret = make([]byte, len(utf16le))
	copy(s.secret, utf16le)
}

// Has reports whether a password is currently set.
func (s *Store) Has() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.secret) > 0
}

// Get returns the stored password bytes. The returned slice aliases the
// store's internal buffer and must not be retained past the caller's use.
func (s *Store) Get() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.secret) == 0 {
		return nil, false
	}

	return s.secret, true
}

// Clear zeroes and releases the stored password.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	zero(s.secret)
	s.secret = nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
