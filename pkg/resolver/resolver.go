package resolver

import (
	"errors"
	"fmt"

	"github.com/scholarled/paper-nft-go/pkg/ledger"
)

var (
	// ErrTokenNotFound means no node in the diff yielded a token candidate.
	ErrTokenNotFound = errors.New("token not found in state diff")
	// ErrAmbiguous is returned by ResolveStrict when the only candidate came
	// from the first-of-final heuristic.
	ErrAmbiguous = errors.New("token resolution is ambiguous")
)

// Confidence labels how a candidate was derived.
type Confidence int

const (
	// ConfidenceFallback is the first entry of a modified page's final token
	// list, taken when the page diff was inconclusive.
	ConfidenceFallback Confidence = iota + 1
	// ConfidenceExact is a created page's first token or the single token a
	// modified page gained.
	ConfidenceExact
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidenceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Resolution is the token chosen from a state diff.
type Resolution struct {
	Token      ledger.TokenEntry
	Confidence Confidence
	// Source is the ledger index of the node the token came from.
	Source string
}

// NotFoundError describes a diff that held no candidate.
type NotFoundError struct {
	Nodes      int
	TokenPages int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: scanned %d nodes, %d token pages", ErrTokenNotFound, e.Nodes, e.TokenPages)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrTokenNotFound
}

// Resolve scans every node of diff and returns the newly created token.
// A candidate with exact confidence beats a fallback; among equals the first
// in diff order wins.
func Resolve(diff ledger.StateDiff) (Resolution, error) {
	var (
		best  Resolution
		found bool
	)

	for _, node := range diff {
		candidate, ok := fromNode(node)
		if !ok {
			continue
		}
		if !found || candidate.Confidence > best.Confidence {
			best = candidate
			found = true
		}
	}

	if !found {
		return Resolution{}, &NotFoundError{Nodes: len(diff), TokenPages: diff.TokenPages()}
	}
	return best, nil
}

// ResolveStrict is Resolve without the fallback heuristic.
func ResolveStrict(diff ledger.StateDiff) (Resolution, error) {
	resolution, err := Resolve(diff)
	if err != nil {
		return Resolution{}, err
	}
	if resolution.Confidence != ConfidenceExact {
		return Resolution{}, fmt.Errorf("%w: only candidate is %s from %s", ErrAmbiguous, resolution.Token.TokenID, resolution.Source)
	}
	return resolution, nil
}

func fromNode(node ledger.AffectedNode) (Resolution, bool) {
	if node.EntryType() != ledger.TokenPageEntryType {
		return Resolution{}, false
	}

	switch n := node.(type) {
	case ledger.CreatedNode:
		if len(n.NewFields.Tokens) == 0 {
			return Resolution{}, false
		}
		return Resolution{Token: n.NewFields.Tokens[0], Confidence: ConfidenceExact, Source: n.LedgerIndex}, true
	case ledger.ModifiedNode:
		if n.PreviousFields != nil {
			added := addedTokens(n.PreviousFields.Tokens, n.FinalFields.Tokens)
			if len(added) == 1 {
				return Resolution{Token: added[0], Confidence: ConfidenceExact, Source: n.LedgerIndex}, true
			}
		}
		if len(n.FinalFields.Tokens) == 0 {
			return Resolution{}, false
		}
		return Resolution{Token: n.FinalFields.Tokens[0], Confidence: ConfidenceFallback, Source: n.LedgerIndex}, true
	case ledger.DeletedNode:
		return Resolution{}, false
	default:
		return Resolution{}, false
	}
}

// addedTokens returns the entries of final whose identifier is absent from
// previous, in final order.
func addedTokens(previous, final []ledger.TokenEntry) []ledger.TokenEntry {
	seen := make(map[string]struct{}, len(previous))
	for _, token := range previous {
		seen[token.TokenID] = struct{}{}
	}
	added := make([]ledger.TokenEntry, 0, 1)
	for _, token := range final {
		if _, ok := seen[token.TokenID]; ok {
			continue
		}
		seen[token.TokenID] = struct{}{}
		added = append(added, token)
	}
	return added
}
