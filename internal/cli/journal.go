package cli

import (
	"github.com/scholarled/paper-nft-go/internal/storage"
	"github.com/scholarled/paper-nft-go/pkg/journal"
)

// openJournal opens the badger journal. A nil store with a no-op close is
// returned when the journal is disabled.
func (o *RootOptions) openJournal() (*journal.Store, func() error, error) {
	if o.Journal == "" {
		return nil, func() error { return nil }, nil
	}
	db, err := storage.NewBadger(o.Journal)
	if err != nil {
		return nil, nil, err
	}
	return journal.NewStore(db), db.Close, nil
}
