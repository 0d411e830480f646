package receipt

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	recordBucketName = "records"
	indexBucketName  = "index"
)

// BoltStore implements the Store interface using BoltDB. Records live in one
// bucket; a second bucket maps each association key to the set of record ids
// carrying it.
type BoltStore struct {
	db *bbolt.DB
}

// envelope is the stored form of a record: its payload plus the keys it was
// created under, so removal can clean up every index entry.
type envelope struct {
	Keys []string        `json:"keys"`
	Data json.RawMessage `json:"data"`
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(recordBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(indexBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// CreateWithKeys stores data under all given association keys
func (b *BoltStore) CreateWithKeys(keys []string, data []byte) (string, error) {
	id := uuid.NewString()
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if err := putRecord(tx, id, envelope{Keys: keys, Data: data}); err != nil {
			return err
		}
		for _, key := range keys {
			if err := addToIndex(tx, key, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ReadByKeys returns every record associated with all given keys
func (b *BoltStore) ReadByKeys(keys []string) ([]Record, error) {
	records := make([]Record, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		ids := intersectIndexes(tx, keys)
		recordBucket := tx.Bucket([]byte(recordBucketName))
		for _, id := range ids {
			raw := recordBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("unmarshaling record %s: %w", id, err)
			}
			records = append(records, Record{ID: id, Data: env.Data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateByKeys replaces the data of every record matching all given keys
func (b *BoltStore) UpdateByKeys(keys []string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		ids := intersectIndexes(tx, keys)
		recordBucket := tx.Bucket([]byte(recordBucketName))
		for _, id := range ids {
			raw := recordBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("unmarshaling record %s: %w", id, err)
			}
			env.Data = data
			if err := putRecord(tx, id, env); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpsertByKeys updates the matching record, or creates one if none matches
func (b *BoltStore) UpsertByKeys(keys []string, data []byte) error {
	var found bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		found = len(intersectIndexes(tx, keys)) > 0
		return nil
	})
	if err != nil {
		return err
	}
	if found {
		return b.UpdateByKeys(keys, data)
	}
	_, err = b.CreateWithKeys(keys, data)
	return err
}

// RemoveByKeys deletes every record matching all given keys
func (b *BoltStore) RemoveByKeys(keys []string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		ids := intersectIndexes(tx, keys)
		recordBucket := tx.Bucket([]byte(recordBucketName))
		for _, id := range ids {
			raw := recordBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("unmarshaling record %s: %w", id, err)
			}
			// Unindex from every key the record was created under, not just
			// the lookup keys
			for _, key := range env.Keys {
				if err := removeFromIndex(tx, key, id); err != nil {
					return err
				}
			}
			if err := recordBucket.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the store
func (b *BoltStore) Close() error {
	return b.db.Close()
}

func putRecord(tx *bbolt.Tx, id string, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return tx.Bucket([]byte(recordBucketName)).Put([]byte(id), data)
}

func readIndex(tx *bbolt.Tx, key string) map[string]bool {
	ids := make(map[string]bool)
	raw := tx.Bucket([]byte(indexBucketName)).Get([]byte(key))
	if raw == nil {
		return ids
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return ids
	}
	for _, id := range list {
		ids[id] = true
	}
	return ids
}

func writeIndex(tx *bbolt.Tx, key string, ids map[string]bool) error {
	bucket := tx.Bucket([]byte(indexBucketName))
	if len(ids) == 0 {
		return bucket.Delete([]byte(key))
	}
	list := make([]string, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshaling index %s: %w", key, err)
	}
	return bucket.Put([]byte(key), data)
}

func addToIndex(tx *bbolt.Tx, key, id string) error {
	ids := readIndex(tx, key)
	ids[id] = true
	return writeIndex(tx, key, ids)
}

func removeFromIndex(tx *bbolt.Tx, key, id string) error {
	ids := readIndex(tx, key)
	delete(ids, id)
	return writeIndex(tx, key, ids)
}

// intersectIndexes returns the ids present in every key's index. Sorted
// output keeps reads deterministic.
func intersectIndexes(tx *bbolt.Tx, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	result := readIndex(tx, keys[0])
	for _, key := range keys[1:] {
		next := readIndex(tx, key)
		for id := range result {
			if !next[id] {
				delete(result, id)
			}
		}
		if len(result) == 0 {
			return nil
		}
	}
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
