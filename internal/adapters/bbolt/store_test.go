package bbolt

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/planner"
	"github.com/corey/curricula/internal/ports"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func makeTestTables() *curriculum.Tables {
	return &curriculum.Tables{
		SSBB: []curriculum.Entry{{Code: "1.A.1", Description: "Geografía física"}},
		CE:   []curriculum.Entry{{Code: "2", Description: "Analizar el territorio"}},
		CEv:  []curriculum.Entry{{Code: "2.1", Description: "Describe el relieve"}},
		DO:   []curriculum.Entry{{Code: "CCL1", Description: "Comunicación oral"}},
		SBLinks: []curriculum.SBLink{
			{SB: "1.A.1", CE: "2", CEv: "2.1"},
		},
		CEDOLinks: []curriculum.CEDOLink{{CE: "2", DOs: "CCL1"}},
	}
}

func makeJob(subject, id string, at time.Time) *ports.ExportJob {
	return &ports.ExportJob{
		ID:         id,
		Subject:    subject,
		CodesRaw:   "CE2, A.1",
		Status:     ports.JobSuccess,
		OutputPath: "/tmp/" + id + ".xlsx",
		CreatedAt:  at,
	}
}

func makePlan(subject, name string) *ports.PlanRecord {
	return &ports.PlanRecord{
		Plan: planner.Plan{
			Name:    name,
			Subject: subject,
			Units:   []planner.Unit{{Name: "U1", SSBB: []string{"1.A.1"}, CEv: []string{"2.1"}}},
		},
		UpdatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore_Jobs_NewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveJob(makeJob("geh", "b", base.Add(time.Minute))))
	require.NoError(t, store.SaveJob(makeJob("geh", "a", base)))
	require.NoError(t, store.SaveJob(makeJob("geh", "c", base.Add(2*time.Minute))))

	jobs, err := store.ListJobs("geh", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "c", jobs[0].ID)
	assert.Equal(t, "b", jobs[1].ID)
	assert.Equal(t, "a", jobs[2].ID)
	assert.True(t, jobs[2].CreatedAt.Equal(base))
	assert.Equal(t, "CE2, A.1", jobs[0].CodesRaw)

	limited, err := store.ListJobs("geh", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

func TestStore_Jobs_Validation(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Error(t, store.SaveJob(nil))
	assert.Error(t, store.SaveJob(&ports.ExportJob{Subject: "geh"}))
	assert.Error(t, store.SaveJob(&ports.ExportJob{ID: "x"}))

	jobs, err := store.ListJobs("missing", 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestStore_Plans_CRUD(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SavePlan(makePlan("geh", "trimestre-2")))
	require.NoError(t, store.SavePlan(makePlan("geh", "trimestre-1")))

	rec, err := store.LoadPlan("geh", "trimestre-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"1.A.1"}, rec.Plan.Units[0].SSBB)

	// Save overwrites by name.
	updated := makePlan("geh", "trimestre-1")
	updated.Plan.Units = append(updated.Plan.Units, planner.Unit{Name: "U2"})
	require.NoError(t, store.SavePlan(updated))

	plans, err := store.ListPlans("geh")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "trimestre-1", plans[0].Plan.Name)
	assert.Len(t, plans[0].Plan.Units, 2)
	assert.Equal(t, "trimestre-2", plans[1].Plan.Name)

	require.NoError(t, store.DeletePlan("geh", "trimestre-2"))
	require.NoError(t, store.DeletePlan("geh", "trimestre-2"))
	require.NoError(t, store.DeletePlan("other", "nope"))

	rec, err = store.LoadPlan("geh", "trimestre-2")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStore_SubjectScoped(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.SavePlan(makePlan("geh", "p")))
	require.NoError(t, store.SaveJob(makeJob("geh", "j1", time.Now())))
	require.NoError(t, store.SavePlan(makePlan("mat", "p")))

	rec, err := store.LoadPlan("bio", "p")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.DeleteSubject("geh"))
	require.NoError(t, store.DeleteSubject("geh"))

	plans, err := store.ListPlans("geh")
	require.NoError(t, err)
	assert.Empty(t, plans)
	jobs, err := store.ListJobs("geh", 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	plans, err = store.ListPlans("mat")
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}

func TestStore_Snapshot_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	miss, err := store.LoadSnapshot("abc")
	require.NoError(t, err)
	assert.Nil(t, miss)

	want := makeTestTables()
	require.NoError(t, store.SaveSnapshot("abc", want))

	got, err := store.LoadSnapshot("abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	assert.Error(t, store.SaveSnapshot("nil", nil))
}

func TestStore_Snapshot_StaleVersionIsMiss(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		if err != nil {
			return err
		}
		return b.Put([]byte("old"), []byte{snapshotVersion + 1, 0x80})
	}))

	got, err := store.LoadSnapshot("old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_StateSurvivesRestart(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.SaveSnapshot("digest", makeTestTables()))
	require.NoError(t, store.SavePlan(makePlan("geh", "p")))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	tables, err := store2.LoadSnapshot("digest")
	require.NoError(t, err)
	require.NotNil(t, tables)
	assert.Len(t, tables.SBLinks, 1)

	rec, err := store2.LoadPlan("geh", "p")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestStore_ConcurrentReads(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveSnapshot("d", makeTestTables()))

	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tables, err := store.LoadSnapshot("d")
			if err != nil {
				errs <- err
				return
			}
			if tables == nil {
				errs <- fmt.Errorf("got nil tables")
				return
			}
			if len(tables.SSBB) != 1 {
				errs <- fmt.Errorf("expected 1 SSBB entry, got %d", len(tables.SSBB))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent read error: %v", err)
	}
}

// =============================================================================
// Lock contention tests: verify the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process holds the bbolt exclusive lock (a running
	// `curricula serve`), a second open should time out in ~1 second.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait ~1s for the configured timeout")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.SaveJob(makeJob("geh", "j", time.Now())))
	store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.NoError(t, err, "open after close should succeed")
	require.NotNil(t, store2)
	assert.Less(t, elapsed, 500*time.Millisecond, "should open instantly after lock released")
	defer store2.Close()

	jobs, err := store2.ListJobs("geh", 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
