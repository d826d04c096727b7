package db

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"dbassist/models"
)

// DB persists chat transcripts and upload records. Everything kept here is
// diagnostic: losing it never affects live sessions, which are in-memory only.
type DB struct {
	badgerDB *badger.DB
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging for cleaner output

	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

// StoreChatExchange appends one request/response pair to a session transcript.
func (d *DB) StoreChatExchange(sessionID, kind, message, response string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		now := time.Now()
		key := []byte(fmt.Sprintf("chat:%s:%d", sessionID, now.UnixNano()))

		exchange := models.ChatExchange{
			SessionID: sessionID,
			Kind:      kind,
			Message:   message,
			Response:  response,
			Timestamp: now.Format(time.RFC3339),
		}

		data, err := json.Marshal(exchange)
		if err != nil {
			return err
		}

		return txn.Set(key, data)
	})
}

// GetSessionHistory returns the persisted transcript of one session in
// insertion order. Keys are timestamped so badger's key order is time order.
func (d *DB) GetSessionHistory(sessionID string) ([]models.ChatExchange, error) {
	var exchanges []models.ChatExchange

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("chat:%s:", sessionID))
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var exchange models.ChatExchange
				if err := json.Unmarshal(val, &exchange); err != nil {
					return err
				}
				exchanges = append(exchanges, exchange)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return exchanges, err
}

// StoreFileRecord records metadata about an uploaded file.
func (d *DB) StoreFileRecord(record models.FileRecord) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		key := []byte(fmt.Sprintf("upload:%d:%s", time.Now().UnixNano(), record.Filename))

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		return txn.Set(key, data)
	})
}

// ListFileRecords returns all persisted upload records.
func (d *DB) ListFileRecords() ([]models.FileRecord, error) {
	var records []models.FileRecord

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("upload:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if !strings.HasPrefix(string(item.Key()), "upload:") {
				continue
			}
			err := item.Value(func(val []byte) error {
				var record models.FileRecord
				if err := json.Unmarshal(val, &record); err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return records, err
}
