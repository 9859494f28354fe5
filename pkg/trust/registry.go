// Package trust maintains the registry of principal signing keys the
// verifier accepts. The registry is required input to signature
// verification; how keys are provisioned or rotated is the issuing
// kernel's concern, not the verifier's.
package trust

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"sync"
)

// KeyStatus classifies the outcome of a principal key lookup. Revoked
// and unknown are reported distinctly from a cryptographically invalid
// signature because they indicate different failure causes.
type KeyStatus int

const (
	KeyActive KeyStatus = iota
	KeyRevoked
	KeyUnknown
)

func (s KeyStatus) String() string {
	switch s {
	case KeyActive:
		return "active"
	case KeyRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Registry maps principal ids to Ed25519 public keys, tracking
// revocations. Revoked principals stay in the registry so their
// receipts fail with a revocation cause rather than an unknown one.
type Registry struct {
	mu      sync.RWMutex
	keys    map[string]ed25519.PublicKey
	revoked map[string]bool
}

// NewRegistry creates an empty trust registry.
func NewRegistry() *Registry {
	return &Registry{
		keys:    make(map[string]ed25519.PublicKey),
		revoked: make(map[string]bool),
	}
}

// Add registers a principal's public key. Re-adding a revoked
// principal reinstates it (key rotation).
func (r *Registry) Add(principal string, key ed25519.PublicKey) error {
	if len(key) != ed25519.PublicKeySize {
		return fmt.Errorf("principal %s: invalid public key size: %d", principal, len(key))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[principal] = key
	delete(r.revoked, principal)
	return nil
}

// AddHex registers a principal's public key from its hex encoding.
func (r *Registry) AddHex(principal, keyHex string) error {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return fmt.Errorf("principal %s: invalid public key hex: %w", principal, err)
	}
	return r.Add(principal, ed25519.PublicKey(raw))
}

// Revoke marks a principal's key as revoked.
func (r *Registry) Revoke(principal string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[principal] = true
}

// Lookup resolves a principal to its key and status. The key is only
// non-nil for KeyActive.
func (r *Registry) Lookup(principal string) (ed25519.PublicKey, KeyStatus) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.keys[principal]
	if !ok {
		return nil, KeyUnknown
	}
	if r.revoked[principal] {
		return nil, KeyRevoked
	}
	return key, KeyActive
}

// Principals returns the ids of all registered principals, revoked
// included.
func (r *Registry) Principals() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.keys))
	for p := range r.keys {
		out = append(out, p)
	}
	return out
}
