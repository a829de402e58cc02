package style

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Fingerprint is the hex-encoded SHA-256 digest of a normalized style and
// its theme. It is stable across processes and is used as the key of both
// cache tiers.
type Fingerprint string

// FingerprintLen is the length of a Fingerprint in hex characters.
const FingerprintLen = sha256.Size * 2

var (
	// ErrUnserializable is returned when a style cannot be serialized,
	// e.g. because it contains cycles, channels or NaN.
	ErrUnserializable = errors.New("style is not serializable")

	// ErrCorrupt is returned by Decode for malformed serialized styles.
	ErrCorrupt = errors.New("serialized style corrupted")
)

// fingerprintPayload is the canonical document that gets hashed.
type fingerprintPayload struct {
	Style Normalized `json:"style"`
	Theme string     `json:"theme"`
}

// Sum computes the fingerprint of n under theme. An empty theme is the
// default theme.
//
// Mapping keys are serialized in sorted order at every depth, so two
// mappings with equal contents always hash equally regardless of how they
// were assembled.
func Sum(n Normalized, theme string) (Fingerprint, error) {
	if theme == "" {
		theme = DefaultTheme
	}
	if n == nil {
		n = Normalized{}
	}

	// encoding/json writes map keys sorted
	raw, err := json.Marshal(fingerprintPayload{Style: n, Theme: theme})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnserializable, err)
	}

	hash := sha256.Sum256(raw)
	return Fingerprint(hex.EncodeToString(hash[:])), nil
}

// Encode serializes n for the durable tier.
func (n Normalized) Encode() ([]byte, error) {
	if n == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnserializable, err)
	}
	return b, nil
}

// Decode parses a style produced by Encode.
func Decode(b []byte) (Normalized, error) {
	var n Normalized
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if n == nil {
		return nil, ErrCorrupt
	}
	return n, nil
}

// Valid reports whether f looks like a fingerprint.
func (f Fingerprint) Valid() bool {
	if len(f) != FingerprintLen {
		return false
	}
	_, err := hex.DecodeString(string(f))
	return err == nil
}

// Short returns an abbreviated form for logs.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

func (f Fingerprint) String() string { return string(f) }
