package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"sniff/internal/domain"
)

// RunsSchemaVersion is incremented on breaking changes to the archive
// format. The archive is a cache of past results, so a mismatch just asks
// the user to delete it.
const RunsSchemaVersion = 1

var (
	bucketRuns    = []byte("runs")
	bucketRunMeta = []byte("meta")
	keyRunsSchema = []byte("schema_version")
)

// RunStore archives completed runs in a bbolt database. Keys are the
// timestamp-prefixed run ids, so bucket order is chronological.
type RunStore struct {
	db *bbolt.DB
}

func NewRunStore(path string) (*RunStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create run archive directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRuns, bucketRunMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &RunStore{db: db}
	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) checkSchema() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRunMeta)
		data := b.Get(keyRunsSchema)
		if data == nil {
			version, err := json.Marshal(RunsSchemaVersion)
			if err != nil {
				return err
			}
			return b.Put(keyRunsSchema, version)
		}
		var version int
		if err := json.Unmarshal(data, &version); err != nil {
			return fmt.Errorf("failed to read run archive schema version: %w", err)
		}
		if version != RunsSchemaVersion {
			return fmt.Errorf("run archive has schema v%d, this build expects v%d; delete the archive file to start fresh",
				version, RunsSchemaVersion)
		}
		return nil
	})
}

// NewRunID returns a sortable id for a run starting now.
func NewRunID(now time.Time) string {
	return now.Format("20060102-150405.000000")
}

func (s *RunStore) SaveRun(rec domain.RunRecord) error {
	if rec.RunID == "" {
		return fmt.Errorf("run record has no run_id")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketRuns).Put([]byte(rec.RunID), data)
	})
}

func (s *RunStore) GetRun(runID string) (domain.RunRecord, error) {
	var rec domain.RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(runID))
		if data == nil {
			return fmt.Errorf("run not found: %s", runID)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

func (s *RunStore) ListRuns() ([]domain.RunRecord, error) {
	var runs []domain.RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var rec domain.RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			runs = append(runs, rec)
			return nil
		})
	})
	return runs, err
}

func (s *RunStore) Close() error {
	return s.db.Close()
}
