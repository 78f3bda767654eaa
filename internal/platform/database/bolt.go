package database

import (
	"fmt"
	"time"

	"github.com/boltdb/bolt"
)

// OpenBolt opens (or creates) the bolt file at path.
// timeout bounds the wait for the file lock held by another process.
func OpenBolt(path string, timeout time.Duration) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %s: %w", path, err)
	}
	return db, nil
}
