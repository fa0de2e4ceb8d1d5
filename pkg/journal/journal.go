package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scholarled/paper-nft-go/internal/storage"
	"github.com/scholarled/paper-nft-go/pkg/mint"
	"github.com/scholarled/paper-nft-go/pkg/payload"
)

var keyPrefix = []byte("mint/")

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("journal entry not found")

// State is the lifecycle state of a mint attempt.
type State string

const (
	StatePending    State = "pending"
	StateFailed     State = "failed"
	StateMinted     State = "minted"
	StateRejected   State = "rejected"
	StateUnresolved State = "unresolved"
	StateUnknown    State = "unknown"
	StateReconciled State = "reconciled"
)

// NeedsReconcile reports whether entries in state s wait for reconciliation.
func (s State) NeedsReconcile() bool {
	return s == StateUnresolved || s == StateUnknown
}

// Entry is one journaled mint attempt.
type Entry struct {
	ID          string    `json:"id"`
	ContentHash string    `json:"content_hash"`
	Title       string    `json:"title"`
	Account     string    `json:"account"`
	TxRef       string    `json:"tx_ref,omitempty"`
	State       State     `json:"state"`
	TokenID     string    `json:"token_id,omitempty"`
	Confidence  string    `json:"confidence,omitempty"`
	Code        string    `json:"code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store keeps journal entries in a storage.DB. It implements mint.Journal.
type Store struct {
	db  storage.DB
	now func() time.Time
	mu  sync.Mutex
}

var _ mint.Journal = (*Store)(nil)

// NewStore creates a new Store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Begin records a pending attempt and returns its id.
func (s *Store) Begin(record payload.Record, account string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	entry := Entry{
		ID:          uuid.NewString(),
		ContentHash: record.ContentHash,
		Title:       record.Title,
		Account:     account,
		State:       StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.put(entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// SetTxRef records the signed transaction reference of an attempt.
func (s *Store) SetTxRef(id string, txRef string) error {
	return s.update(id, func(entry *Entry) {
		entry.TxRef = txRef
	})
}

// Finish records the outcome of an attempt.
func (s *Store) Finish(id string, outcome mint.Outcome) error {
	return s.update(id, func(entry *Entry) {
		if outcome.TxRef != "" {
			entry.TxRef = outcome.TxRef
		}
		entry.Code = outcome.Code
		entry.State = stateOf(outcome)
		if outcome.Token != nil {
			entry.TokenID = outcome.Token.TokenID
			entry.Confidence = outcome.Confidence.String()
		}
	})
}

// MarkReconciled attaches a token id found after the fact.
func (s *Store) MarkReconciled(id string, tokenID string, confidence string) error {
	return s.update(id, func(entry *Entry) {
		entry.State = StateReconciled
		entry.TokenID = tokenID
		entry.Confidence = confidence
	})
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Entry, error) {
	raw, err := s.db.Get(key(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Entry{}, fmt.Errorf("failed to read journal entry %s: %w", id, err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("failed to decode journal entry %s: %w", id, err)
	}
	return entry, nil
}

// List returns entries in creation order. With no states given every entry
// is returned.
func (s *Store) List(states ...State) ([]Entry, error) {
	wanted := make(map[State]struct{}, len(states))
	for _, state := range states {
		wanted[state] = struct{}{}
	}

	entries := make([]Entry, 0)
	err := s.db.ForEach(keyPrefix, func(k, value []byte) error {
		var entry Entry
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("failed to decode journal entry %s: %w", k, err)
		}
		if len(wanted) > 0 {
			if _, ok := wanted[entry.State]; !ok {
				return nil
			}
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Outstanding returns the entries waiting for reconciliation.
func (s *Store) Outstanding() ([]Entry, error) {
	return s.List(StateUnresolved, StateUnknown)
}

func (s *Store) update(id string, apply func(entry *Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.Get(id)
	if err != nil {
		return err
	}
	apply(&entry)
	entry.UpdatedAt = s.now().UTC()
	return s.put(entry)
}

func (s *Store) put(entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	if err := s.db.Put(key(entry.ID), raw); err != nil {
		return fmt.Errorf("failed to write journal entry %s: %w", entry.ID, err)
	}
	return nil
}

func stateOf(outcome mint.Outcome) State {
	switch {
	case outcome.Unknown:
		return StateUnknown
	case outcome.Success && outcome.Token == nil:
		return StateUnresolved
	case outcome.Success:
		return StateMinted
	case outcome.Code != "":
		return StateRejected
	default:
		return StateFailed
	}
}

func key(id string) []byte {
	return append(append([]byte(nil), keyPrefix...), id...)
}
