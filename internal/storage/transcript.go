package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"webchat-client/internal/crypto"
	"webchat-client/internal/event"
)

const (
	rowsBucket = "rows"
	idsBucket  = "ids"
)

// Record is one persisted transcript entry.
type Record struct {
	event.Message
	Own    bool `json:"own,omitempty"`
	System bool `json:"system,omitempty"`
}

// Transcript persists the confirmed transcript per scope using BoltDB so the
// client can show recent conversation context on restart. Records are kept in
// arrival order; edit and delete confirmations rewrite them so a reload
// matches what the server last said. A nil Transcript is a no-op everywhere,
// mirroring the degraded memory-only mode when the db cannot open.
type Transcript struct {
	db  *bbolt.DB
	box *crypto.Box
}

// OpenTranscript opens (or creates) the transcript db. box may be nil for
// plaintext storage.
func OpenTranscript(path string, box *crypto.Box) (*Transcript, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &Transcript{db: db, box: box}, nil
}

func (t *Transcript) Close() error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Close()
}

func scopeBuckets(tx *bbolt.Tx, scope string, create bool) (rows, ids *bbolt.Bucket, err error) {
	if create {
		root, err := tx.CreateBucketIfNotExists([]byte(scope))
		if err != nil {
			return nil, nil, err
		}
		rows, err = root.CreateBucketIfNotExists([]byte(rowsBucket))
		if err != nil {
			return nil, nil, err
		}
		ids, err = root.CreateBucketIfNotExists([]byte(idsBucket))
		return rows, ids, err
	}
	root := tx.Bucket([]byte(scope))
	if root == nil {
		return nil, nil, nil
	}
	return root.Bucket([]byte(rowsBucket)), root.Bucket([]byte(idsBucket)), nil
}

// Append stores one record at the end of the scope's transcript. An id that
// is already stored is overwritten in place, so a re-delivered echo never
// leaves a second copy behind.
func (t *Transcript) Append(scope string, rec Record) error {
	if t == nil || t.db == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	sealed, err := t.box.Seal(data)
	if err != nil {
		return err
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		rows, ids, err := scopeBuckets(tx, scope, true)
		if err != nil {
			return err
		}
		if rec.ID != "" {
			if key := ids.Get([]byte(rec.ID)); key != nil {
				return rows.Put(key, sealed)
			}
		}
		seq, err := rows.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err := rows.Put(key, sealed); err != nil {
			return err
		}
		if rec.ID != "" {
			return ids.Put([]byte(rec.ID), key)
		}
		return nil
	})
}

// Update rewrites the stored body for a message id. Unknown ids are no-ops,
// same as the rendered view.
func (t *Transcript) Update(scope, id, body string) error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		rows, ids, err := scopeBuckets(tx, scope, false)
		if err != nil || rows == nil {
			return err
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return nil
		}
		sealed := rows.Get(key)
		if sealed == nil {
			return nil
		}
		data, err := t.box.Open(sealed)
		if err != nil {
			return fmt.Errorf("open record %s: %w", id, err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		rec.Body = body
		data, err = json.Marshal(rec)
		if err != nil {
			return err
		}
		sealed, err = t.box.Seal(data)
		if err != nil {
			return err
		}
		return rows.Put(key, sealed)
	})
}

// Delete removes the stored record for a message id.
func (t *Transcript) Delete(scope, id string) error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Update(func(tx *bbolt.Tx) error {
		rows, ids, err := scopeBuckets(tx, scope, false)
		if err != nil || rows == nil {
			return err
		}
		key := ids.Get([]byte(id))
		if key == nil {
			return nil
		}
		if err := rows.Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
}

// Recent returns up to limit records from the end of the scope's transcript,
// oldest first. Records that fail to decode (for example under a changed
// passphrase) are skipped.
func (t *Transcript) Recent(scope string, limit int) ([]Record, error) {
	if t == nil || t.db == nil || limit <= 0 {
		return nil, nil
	}
	var out []Record
	err := t.db.View(func(tx *bbolt.Tx) error {
		rows, _, err := scopeBuckets(tx, scope, false)
		if err != nil || rows == nil {
			return err
		}
		cursor := rows.Cursor()
		for k, v := cursor.Last(); k != nil && limit > 0; k, v = cursor.Prev() {
			data, err := t.box.Open(v)
			if err != nil {
				continue
			}
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				continue
			}
			out = append(out, rec)
			limit--
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
