// Package fingerprint computes the content fingerprint of a paper file: the
// SHA-256 hex digest embedded in the token payload and the CIDv1 under which
// the same bytes are addressed on IPFS.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DigestHexLength is the length of a SHA-256 digest in hex characters.
const DigestHexLength = sha256.Size * 2

// ErrInvalidDigest is returned by ValidateHex.
var ErrInvalidDigest = errors.New("invalid content hash")

type Fingerprint struct {
	SHA256Hex string `json:"sha256"`
	CID       string `json:"cid"`
	Size      int64  `json:"size"`
}

// Compute hashes everything read from r.
func Compute(r io.Reader) (Fingerprint, error) {
	hasher := sha256.New()
	size, err := io.Copy(hasher, r)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to read content: %w", err)
	}
	sum := hasher.Sum(nil)

	encoded, err := multihash.Encode(sum, multihash.SHA2_256)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to encode multihash: %w", err)
	}

	return Fingerprint{
		SHA256Hex: hex.EncodeToString(sum),
		CID:       cid.NewCidV1(cid.Raw, encoded).String(),
		Size:      size,
	}, nil
}

// ComputeBytes is Compute over an in-memory buffer.
func ComputeBytes(data []byte) Fingerprint {
	fp, _ := Compute(bytes.NewReader(data))
	return fp
}

// ValidateHex checks that value is a non-empty, even-length hex string and
// returns it lower-cased. Digests of any length are accepted so that
// SHA-384/512 fingerprints remain usable.
func ValidateHex(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDigest)
	}
	if len(trimmed)%2 != 0 {
		return "", fmt.Errorf("%w: odd length %d", ErrInvalidDigest, len(trimmed))
	}
	if _, err := hex.DecodeString(trimmed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	return trimmed, nil
}

// MatchesCID reports whether data hashes to the given CID string. CIDs with
// any multihash function supported by go-multihash are accepted.
func MatchesCID(data []byte, cidString string) (bool, error) {
	parsed, err := cid.Decode(strings.TrimSpace(cidString))
	if err != nil {
		return false, fmt.Errorf("invalid CID: %w", err)
	}
	prefix := parsed.Prefix()
	computed, err := prefix.Sum(data)
	if err != nil {
		return false, fmt.Errorf("failed to hash content: %w", err)
	}
	return computed.Equals(parsed), nil
}
