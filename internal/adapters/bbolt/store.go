// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// Each subject gets its own bucket under "subjects", holding "jobs" and "plans"
// sub-buckets of JSON records. Parsed-dataset snapshots live in a shared
// "snapshots" bucket keyed by source digest. Writes are transactional: a crash
// mid-write cannot corrupt previously committed data.
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/ports"
)

// Bucket keys
var (
	bucketSubjects  = []byte("subjects")
	bucketSnapshots = []byte("snapshots")
	bucketJobs      = []byte("jobs")
	bucketPlans     = []byte("plans")
)

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.Storage = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// subjectBucket returns the named sub-bucket of a subject, creating the
// path when create is set. Returns nil when it doesn't exist and create is off.
func subjectBucket(tx *bolt.Tx, subject string, name []byte, create bool) (*bolt.Bucket, error) {
	if subject == "" {
		return nil, fmt.Errorf("empty subject")
	}
	if !create {
		root := tx.Bucket(bucketSubjects)
		if root == nil {
			return nil, nil
		}
		sb := root.Bucket([]byte(subject))
		if sb == nil {
			return nil, nil
		}
		return sb.Bucket(name), nil
	}
	root, err := tx.CreateBucketIfNotExists(bucketSubjects)
	if err != nil {
		return nil, err
	}
	sb, err := root.CreateBucketIfNotExists([]byte(subject))
	if err != nil {
		return nil, err
	}
	return sb.CreateBucketIfNotExists(name)
}

// jobKey orders jobs by creation time; the ID suffix keeps keys unique.
func jobKey(job *ports.ExportJob) []byte {
	key := make([]byte, 8, 8+len(job.ID))
	binary.BigEndian.PutUint64(key, uint64(job.CreatedAt.UnixNano()))
	return append(key, job.ID...)
}

// SaveJob persists an export job.
func (s *Store) SaveJob(job *ports.ExportJob) error {
	if job == nil {
		return fmt.Errorf("nil job")
	}
	if job.ID == "" {
		return fmt.Errorf("job without id")
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		jb, err := subjectBucket(tx, job.Subject, bucketJobs, true)
		if err != nil {
			return err
		}
		return jb.Put(jobKey(job), data)
	})
}

// ListJobs returns the jobs of a subject, newest first.
func (s *Store) ListJobs(subject string, limit int) ([]*ports.ExportJob, error) {
	var raw [][]byte

	err := s.db.View(func(tx *bolt.Tx) error {
		jb, err := subjectBucket(tx, subject, bucketJobs, false)
		if err != nil || jb == nil {
			return err
		}
		c := jb.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(raw) == limit {
				break
			}
			// Copy bytes out of the transaction (bbolt slices are only valid within tx)
			buf := make([]byte, len(v))
			copy(buf, v)
			raw = append(raw, buf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]*ports.ExportJob, 0, len(raw))
	for _, data := range raw {
		var job ports.ExportJob
		if err := json.Unmarshal(data, &job); err != nil {
			return nil, fmt.Errorf("unmarshal job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, nil
}

// SavePlan persists a plan, replacing any plan of the same name.
func (s *Store) SavePlan(rec *ports.PlanRecord) error {
	if rec == nil {
		return fmt.Errorf("nil plan")
	}
	if rec.Plan.Name == "" {
		return fmt.Errorf("plan without name")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		pb, err := subjectBucket(tx, rec.Plan.Subject, bucketPlans, true)
		if err != nil {
			return err
		}
		return pb.Put([]byte(rec.Plan.Name), data)
	})
}

// LoadPlan retrieves one plan.
// Returns nil, nil if no plan exists.
func (s *Store) LoadPlan(subject, name string) (*ports.PlanRecord, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		pb, err := subjectBucket(tx, subject, bucketPlans, false)
		if err != nil || pb == nil {
			return err
		}
		if v := pb.Get([]byte(name)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var rec ports.PlanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return &rec, nil
}

// ListPlans returns the plans of a subject ordered by name.
func (s *Store) ListPlans(subject string) ([]*ports.PlanRecord, error) {
	var plans []*ports.PlanRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		pb, err := subjectBucket(tx, subject, bucketPlans, false)
		if err != nil || pb == nil {
			return err
		}
		// bbolt iterates keys in byte order. Unmarshal copies, so decoding
		// inside the tx is safe.
		return pb.ForEach(func(k, v []byte) error {
			var rec ports.PlanRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal plan %q: %w", k, err)
			}
			plans = append(plans, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// DeletePlan removes one plan.
// Idempotent: deleting a nonexistent plan is not an error.
func (s *Store) DeletePlan(subject, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		pb, err := subjectBucket(tx, subject, bucketPlans, false)
		if err != nil || pb == nil {
			return err
		}
		return pb.Delete([]byte(name))
	})
}

// SaveSnapshot caches parsed tables under the digest of their source.
func (s *Store) SaveSnapshot(digest string, tables *curriculum.Tables) error {
	if tables == nil {
		return fmt.Errorf("nil tables")
	}
	data, err := encodeSnapshot(tables)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		if err != nil {
			return err
		}
		return b.Put([]byte(digest), data)
	})
}

// LoadSnapshot retrieves cached tables.
// Returns nil, nil on a miss or a snapshot of an older format.
func (s *Store) LoadSnapshot(digest string) (*curriculum.Tables, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(digest)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	t, ok, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return t, nil
}

// DeleteSubject removes all jobs and plans of a subject.
// Idempotent: deleting a nonexistent subject is not an error.
func (s *Store) DeleteSubject(subject string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketSubjects)
		if root == nil {
			return nil
		}
		if err := root.DeleteBucket([]byte(subject)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}
