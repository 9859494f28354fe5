// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// compliant serialization for deterministic hashing of receipts.
//
// Determinism is the security-critical property here: two semantically
// equal inputs MUST canonicalize to identical bytes, and any single-bit
// content change MUST canonicalize differently.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// HashAlgorithm tags every digest produced by this package. The tag is
// part of the comparison contract: a digest computed under a different
// algorithm tag never matches, even for equal hex payloads.
const HashAlgorithm = "sha256"

// JCS returns the RFC 8785 canonical JSON representation of v.
//
// v is first marshaled with encoding/json (respecting struct tags),
// then the intermediate encoding is transformed to canonical form:
// keys sorted lexicographically by UTF-16 code units, no insignificant
// whitespace, ES6 number serialization, no HTML escaping.
func JCS(v any) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jcs: pre-marshal failed: %w", err)
	}
	canonical, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("jcs: transform failed: %w", err)
	}
	return canonical, nil
}

// JCSString returns the JCS canonical form as a string.
func JCSString(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HashBytes computes the SHA-256 digest of raw bytes as bare hex.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// TaggedHash computes the self-describing digest of raw bytes in the
// form "<algorithm>:<hex-digest>".
func TaggedHash(data []byte) string {
	return HashAlgorithm + ":" + HashBytes(data)
}

// CanonicalHash returns the tagged SHA-256 digest of the canonical JSON
// representation of v.
func CanonicalHash(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return TaggedHash(b), nil
}
