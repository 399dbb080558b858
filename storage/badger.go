package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// sequenceBandwidth is how many ids a badger sequence leases at a time.
const sequenceBandwidth = 100

// OpenBadger opens (or creates) a badger database in dir. An empty dir opens
// an in-memory database.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(log.StandardLogger())
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", dir, err)
	}
	return db, nil
}

// BadgerSequence leases ids for the named entity. Badger sequences start at
// zero, so callers add one to get positive ids.
func BadgerSequence(db *badger.DB, name string) (*badger.Sequence, error) {
	seq, err := db.GetSequence([]byte("seq:"+name), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("failed to lease %s ids: %w", name, err)
	}
	return seq, nil
}
