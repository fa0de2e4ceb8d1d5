package ledger

import (
	"encoding/json"
	"fmt"
)

// TokenPageEntryType is the ledger entry type of a token page.
const TokenPageEntryType = "NFTokenPage"

// TokenEntry is one token held in a token page.
type TokenEntry struct {
	TokenID string `json:"token_id"`
	URI     string `json:"uri,omitempty"`
}

// Fields is the part of a ledger entry's field set the engine reads.
type Fields struct {
	Tokens []TokenEntry
}

// AffectedNode is one entry of a finalized state diff. The set of variants
// is closed: CreatedNode, ModifiedNode and DeletedNode.
type AffectedNode interface {
	EntryType() string
	Index() string
	isAffectedNode()
}

// CreatedNode is a ledger object the transaction created.
type CreatedNode struct {
	LedgerEntryType string
	LedgerIndex     string
	NewFields       Fields
}

// ModifiedNode is an existing ledger object the transaction changed.
// PreviousFields is nil when the ledger did not report the previous token
// list.
type ModifiedNode struct {
	LedgerEntryType string
	LedgerIndex     string
	PreviousFields  *Fields
	FinalFields     Fields
}

// DeletedNode is a ledger object the transaction removed.
type DeletedNode struct {
	LedgerEntryType string
	LedgerIndex     string
	FinalFields     Fields
}

func (n CreatedNode) EntryType() string  { return n.LedgerEntryType }
func (n ModifiedNode) EntryType() string { return n.LedgerEntryType }
func (n DeletedNode) EntryType() string  { return n.LedgerEntryType }

func (n CreatedNode) Index() string  { return n.LedgerIndex }
func (n ModifiedNode) Index() string { return n.LedgerIndex }
func (n DeletedNode) Index() string  { return n.LedgerIndex }

func (CreatedNode) isAffectedNode()  {}
func (ModifiedNode) isAffectedNode() {}
func (DeletedNode) isAffectedNode()  {}

// StateDiff is the ordered list of nodes a finalized transaction affected.
type StateDiff []AffectedNode

// TokenPages returns the number of token page nodes in the diff.
func (d StateDiff) TokenPages() int {
	count := 0
	for _, node := range d {
		if node.EntryType() == TokenPageEntryType {
			count++
		}
	}
	return count
}

type rawToken struct {
	NFToken struct {
		NFTokenID string `json:"NFTokenID"`
		URI       string `json:"URI"`
	} `json:"NFToken"`
}

type rawFields struct {
	NFTokens *[]rawToken `json:"NFTokens"`
}

type rawNode struct {
	LedgerEntryType string     `json:"LedgerEntryType"`
	LedgerIndex     string     `json:"LedgerIndex"`
	NewFields       *rawFields `json:"NewFields"`
	FinalFields     *rawFields `json:"FinalFields"`
	PreviousFields  *rawFields `json:"PreviousFields"`
}

// ParseAffectedNodes decodes the AffectedNodes array of XRPL transaction
// metadata. Every element must be a CreatedNode, ModifiedNode or DeletedNode
// wrapper.
func ParseAffectedNodes(raw json.RawMessage) (StateDiff, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return StateDiff{}, nil
	}

	var wrappers []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrappers); err != nil {
		return nil, fmt.Errorf("failed to decode affected nodes: %w", err)
	}

	diff := make(StateDiff, 0, len(wrappers))
	for position, wrapper := range wrappers {
		if len(wrapper) != 1 {
			return nil, fmt.Errorf("affected node %d: expected one variant, got %d", position, len(wrapper))
		}
		for variant, body := range wrapper {
			var node rawNode
			if err := json.Unmarshal(body, &node); err != nil {
				return nil, fmt.Errorf("affected node %d: %w", position, err)
			}

			switch variant {
			case "CreatedNode":
				diff = append(diff, CreatedNode{
					LedgerEntryType: node.LedgerEntryType,
					LedgerIndex:     node.LedgerIndex,
					NewFields:       node.NewFields.fields(),
				})
			case "ModifiedNode":
				modified := ModifiedNode{
					LedgerEntryType: node.LedgerEntryType,
					LedgerIndex:     node.LedgerIndex,
					FinalFields:     node.FinalFields.fields(),
				}
				if node.PreviousFields != nil && node.PreviousFields.NFTokens != nil {
					previous := node.PreviousFields.fields()
					modified.PreviousFields = &previous
				}
				diff = append(diff, modified)
			case "DeletedNode":
				diff = append(diff, DeletedNode{
					LedgerEntryType: node.LedgerEntryType,
					LedgerIndex:     node.LedgerIndex,
					FinalFields:     node.FinalFields.fields(),
				})
			default:
				return nil, fmt.Errorf("affected node %d: unknown variant %q", position, variant)
			}
		}
	}

	return diff, nil
}

func (f *rawFields) fields() Fields {
	if f == nil || f.NFTokens == nil {
		return Fields{}
	}
	tokens := make([]TokenEntry, 0, len(*f.NFTokens))
	for _, token := range *f.NFTokens {
		tokens = append(tokens, TokenEntry{
			TokenID: token.NFToken.NFTokenID,
			URI:     token.NFToken.URI,
		})
	}
	return Fields{Tokens: tokens}
}
