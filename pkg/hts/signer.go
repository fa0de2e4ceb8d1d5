package hts

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/scholarled/paper-nft-go/pkg/shared"
)

// KeySigner signs with a Hedera private key. It carries the supply key into
// AutofillAndSign.
type KeySigner struct {
	key hedera.PrivateKey
}

// NewKeySigner parses an ED25519 or ECDSA private key.
func NewKeySigner(raw string) (*KeySigner, error) {
	key, err := shared.ParsePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	return &KeySigner{key: key}, nil
}

func (s *KeySigner) PublicKey() []byte {
	return s.key.PublicKey().BytesRaw()
}

func (s *KeySigner) Sign(message []byte) ([]byte, error) {
	return s.key.Sign(message), nil
}
