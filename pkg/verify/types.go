package verify

import (
	"fmt"

	"github.com/scholarled/paper-nft-go/pkg/payload"
)

// Kind names a verdict variant.
type Kind string

const (
	KindNotAssociated Kind = "not_associated"
	KindVerified      Kind = "verified"
	KindMismatch      Kind = "mismatch"
	KindMalformed     Kind = "malformed"
)

// Verdict is the result of a verification. The set of variants is closed:
// NotAssociated, Verified, Mismatch and Malformed.
type Verdict interface {
	Kind() Kind
	String() string
	isVerdict()
}

// NotAssociated means no token is associated with the paper, or the ledger
// holds no token with the given id.
type NotAssociated struct {
	TokenID string
}

// Verified means the token payload carries the expected hash.
type Verified struct {
	TokenID string
	Record  payload.Record
}

// Mismatch means the token payload carries a different hash.
type Mismatch struct {
	TokenID  string
	Expected string
	Found    string
}

// Malformed means the token payload could not be decoded.
type Malformed struct {
	TokenID string
	Reason  string
}

func (NotAssociated) Kind() Kind { return KindNotAssociated }
func (Verified) Kind() Kind      { return KindVerified }
func (Mismatch) Kind() Kind      { return KindMismatch }
func (Malformed) Kind() Kind     { return KindMalformed }

func (v NotAssociated) String() string {
	if v.TokenID == "" {
		return "no token associated"
	}
	return fmt.Sprintf("token %s not found", v.TokenID)
}

func (v Verified) String() string {
	return fmt.Sprintf("token %s verified", v.TokenID)
}

func (v Mismatch) String() string {
	return fmt.Sprintf("token %s hash mismatch: expected %s, found %s", v.TokenID, v.Expected, v.Found)
}

func (v Malformed) String() string {
	return fmt.Sprintf("token %s payload malformed: %s", v.TokenID, v.Reason)
}

func (NotAssociated) isVerdict() {}
func (Verified) isVerdict()      {}
func (Mismatch) isVerdict()      {}
func (Malformed) isVerdict()     {}
