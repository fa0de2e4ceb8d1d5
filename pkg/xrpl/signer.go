package xrpl

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

// KeySigner signs transactions with a secp256k1 key. Signatures are
// deterministic (RFC 6979), low-S and DER encoded.
type KeySigner struct {
	privateKey *btcec.PrivateKey
	publicKey  []byte
}

var _ ledger.Signer = (*KeySigner)(nil)

// NewKeySigner parses a family seed ("s...") or a hex private key. Hex keys
// may carry the 00 prefix some wallets export.
func NewKeySigner(secret string) (*KeySigner, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, fmt.Errorf("secret key is required")
	}

	if strings.HasPrefix(trimmed, "s") {
		if strings.HasPrefix(trimmed, "sEd") {
			return nil, fmt.Errorf("ed25519 seeds are not supported; use a secp256k1 seed or key")
		}
		entropy, err := decodeCheck(trimmed, familySeedVersion, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid family seed: %w", err)
		}
		privateKey, err := deriveAccountKey(entropy)
		if err != nil {
			return nil, err
		}
		return newKeySigner(privateKey), nil
	}

	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("secret key is neither a family seed nor hex: %w", err)
	}
	if len(raw) == 33 && raw[0] == 0x00 {
		raw = raw[1:]
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("hex private key must be 32 bytes, got %d", len(raw))
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("private key is out of range")
	}
	privateKey, _ := btcec.PrivKeyFromBytes(raw)
	return newKeySigner(privateKey), nil
}

func newKeySigner(privateKey *btcec.PrivateKey) *KeySigner {
	return &KeySigner{
		privateKey: privateKey,
		publicKey:  privateKey.PubKey().SerializeCompressed(),
	}
}

// PublicKey returns the 33-byte compressed public key.
func (s *KeySigner) PublicKey() []byte {
	return append([]byte(nil), s.publicKey...)
}

// Address returns the classic address of the key's master account.
func (s *KeySigner) Address() string {
	return AddressFromPublicKey(s.publicKey)
}

// Sign signs the SHA-512Half digest of message.
func (s *KeySigner) Sign(message []byte) ([]byte, error) {
	signature := ecdsa.Sign(s.privateKey, sha512Half(message))
	return signature.Serialize(), nil
}

// NewIdentity builds a signing identity from a secret. An empty account
// defaults to the key's master account.
func NewIdentity(account string, secret string) (ledger.Identity, error) {
	signer, err := NewKeySigner(secret)
	if err != nil {
		return ledger.Identity{}, err
	}
	account = strings.TrimSpace(account)
	if account == "" {
		account = signer.Address()
	}
	if !IsValidAddress(account) {
		return ledger.Identity{}, fmt.Errorf("%w: %q", ErrInvalidAddress, account)
	}
	return ledger.Identity{Account: account, Signer: signer}, nil
}

// deriveAccountKey derives the first account key of a secp256k1 family seed:
// root = first valid SHA-512Half(seed || seq), then
// account = root + first valid SHA-512Half(rootPub || 0 || seq) mod N.
func deriveAccountKey(entropy []byte) (*btcec.PrivateKey, error) {
	root, err := scalarFromHashes(entropy)
	if err != nil {
		return nil, err
	}
	rootBytes := root.Bytes()
	rootKey, _ := btcec.PrivKeyFromBytes(rootBytes[:])
	rootPublic := rootKey.PubKey().SerializeCompressed()

	var accountIndex [4]byte
	intermediate, err := scalarFromHashes(append(rootPublic, accountIndex[:]...))
	if err != nil {
		return nil, err
	}

	intermediate.Add(&root)
	if intermediate.IsZero() {
		return nil, fmt.Errorf("derived private key is zero")
	}
	accountBytes := intermediate.Bytes()
	privateKey, _ := btcec.PrivKeyFromBytes(accountBytes[:])
	return privateKey, nil
}

// scalarFromHashes returns the first SHA-512Half(prefix || seq) that is a
// valid non-zero scalar.
func scalarFromHashes(prefix []byte) (btcec.ModNScalar, error) {
	var sequence [4]byte
	for seq := uint32(0); seq < 1<<16; seq++ {
		binary.BigEndian.PutUint32(sequence[:], seq)
		var scalar btcec.ModNScalar
		overflow := scalar.SetByteSlice(sha512Half(prefix, sequence[:]))
		if !overflow && !scalar.IsZero() {
			return scalar, nil
		}
	}
	return btcec.ModNScalar{}, fmt.Errorf("failed to derive a valid key")
}
