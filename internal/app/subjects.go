package app

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corey/curricula/internal/adapters/web"
	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/ports"
)

var _ web.AppQueries = (*App)(nil)

// subject is one catalog entry and its current index. Readers load state
// without locking; reloads are serialized by mu and publish a new state.
type subject struct {
	conf  Subject
	path  string // absolute dataset path
	mu    sync.Mutex
	state atomic.Pointer[subjectState]
}

// subjectState is immutable once published.
type subjectState struct {
	idx      *curriculum.Index // nil until the first successful load
	digest   string            // sha256 of the workbook bytes behind idx
	loadedAt time.Time
	err      error // last load failure, nil after a success
}

func (s *subjectState) codes() int {
	n := 0
	for _, c := range curriculum.Classes {
		n += s.idx.Count(c)
	}
	return n
}

// LoadSubjects loads the named subjects, or every active subject when none
// are named, concurrently. A subject that fails to load keeps its previous
// index and records the error; only unknown codes and cancellation fail the
// call.
func (a *App) LoadSubjects(ctx context.Context, codes ...string) error {
	var subs []*subject
	if len(codes) == 0 {
		for _, code := range a.order {
			if sub := a.subjects[code]; sub.conf.Active {
				subs = append(subs, sub)
			}
		}
	} else {
		for _, code := range codes {
			sub, err := a.subject(code)
			if err != nil {
				return err
			}
			subs = append(subs, sub)
		}
	}
	if len(subs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(subs)))
	for _, sub := range subs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.reload(gctx, sub)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// reload reads the subject's workbook and swaps in a fresh index. It
// reports whether the index changed. Unchanged bytes are a no-op.
func (a *App) reload(ctx context.Context, sub *subject) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	prev := sub.state.Load()
	start := time.Now()
	idx, digest, err := a.build(ctx, sub, prev)
	if err != nil {
		next := &subjectState{err: err}
		if prev != nil {
			next.idx, next.digest, next.loadedAt = prev.idx, prev.digest, prev.loadedAt
		}
		sub.state.Store(next)
		a.log.Error("load subject", "subject", sub.conf.Code, "dataset", sub.path, "err", err)
		return false
	}
	if idx == nil {
		return false
	}

	sub.state.Store(&subjectState{idx: idx, digest: digest, loadedAt: a.now()})
	args := []any{"subject", sub.conf.Code, "elapsed", time.Since(start).Round(time.Millisecond)}
	for _, c := range curriculum.Classes {
		args = append(args, c.String(), idx.Count(c))
	}
	a.log.Info("subject loaded", args...)
	if d := idx.Dangling(); len(d) > 0 {
		a.log.Warn("dangling references", "subject", sub.conf.Code, "count", len(d),
			"first", fmt.Sprintf("%s %s (from %s)", d[0].Class, d[0].Code, d[0].From))
	}
	return true
}

// build returns a nil index when the workbook digest matches prev.
func (a *App) build(ctx context.Context, sub *subject, prev *subjectState) (*curriculum.Index, string, error) {
	data, err := os.ReadFile(sub.path)
	if err != nil {
		return nil, "", fmt.Errorf("read dataset: %w", err)
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if prev != nil && prev.idx != nil && prev.err == nil && prev.digest == digest {
		return nil, digest, nil
	}

	var tables *curriculum.Tables
	if a.Store != nil {
		if tables, err = a.Store.LoadSnapshot(digest); err != nil {
			a.log.Warn("snapshot cache", "subject", sub.conf.Code, "err", err)
			tables = nil
		}
	}
	if tables == nil {
		tables, err = a.Loader.Load(ctx, filepath.Base(sub.path), bytes.NewReader(data))
		if err != nil {
			return nil, "", err
		}
		if a.Store != nil {
			if err := a.Store.SaveSnapshot(digest, tables); err != nil {
				a.log.Warn("snapshot cache", "subject", sub.conf.Code, "err", err)
			}
		}
	} else {
		a.log.Debug("snapshot hit", "subject", sub.conf.Code, "digest", digest[:12])
	}
	return curriculum.Build(*tables), digest, nil
}

// subject looks up a catalog entry.
func (a *App) subject(code string) (*subject, error) {
	sub, ok := a.subjects[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownSubject, code)
	}
	return sub, nil
}

// DefaultSubject returns the only catalog subject, or "" when there are
// zero or several.
func (a *App) DefaultSubject() string {
	if len(a.order) == 1 {
		return a.order[0]
	}
	return ""
}

// Index returns the current index of a subject. Implements web.AppQueries.
func (a *App) Index(code string) (*curriculum.Index, error) {
	sub, err := a.subject(code)
	if err != nil {
		return nil, err
	}
	st := sub.state.Load()
	switch {
	case st != nil && st.idx != nil:
		return st.idx, nil
	case st != nil && st.err != nil:
		return nil, fmt.Errorf("subject %s: %w", code, st.err)
	case !sub.conf.Active:
		return nil, fmt.Errorf("subject %s is inactive", code)
	default:
		return nil, fmt.Errorf("subject %s is not loaded", code)
	}
}

// Subjects describes every catalog subject in catalog order.
// Implements web.AppQueries.
func (a *App) Subjects() []web.SubjectInfo {
	out := make([]web.SubjectInfo, 0, len(a.order))
	for _, code := range a.order {
		sub := a.subjects[code]
		info := web.SubjectInfo{
			Code:    code,
			Name:    sub.conf.Name,
			Dataset: sub.conf.Dataset,
			Active:  sub.conf.Active,
		}
		if st := sub.state.Load(); st != nil {
			if st.idx != nil {
				info.Loaded = true
				info.LoadedAt = st.loadedAt
				info.Counts = make(map[string]int, len(curriculum.Classes))
				for _, c := range curriculum.Classes {
					info.Counts[c.String()] = st.idx.Count(c)
				}
				info.Dangling = len(st.idx.Dangling())
			}
			if st.err != nil {
				info.Error = st.err.Error()
			}
		}
		out = append(out, info)
	}
	return out
}

// datasetPaths lists the workbooks of active subjects.
func (a *App) datasetPaths() []string {
	var paths []string
	for _, code := range a.order {
		if sub := a.subjects[code]; sub.conf.Active {
			paths = append(paths, sub.path)
		}
	}
	return paths
}

// onDatasetChanged reloads every active subject backed by path.
func (a *App) onDatasetChanged(path string) {
	changed := false
	for _, code := range a.order {
		sub := a.subjects[code]
		if !sub.conf.Active || !samePath(sub.path, path) {
			continue
		}
		a.log.Info("dataset changed", "subject", code, "path", path)
		if a.reload(context.Background(), sub) {
			changed = true
		}
	}
	if changed {
		a.reloads.Add(1)
	}
	a.writeStatus()
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	ca, err1 := filepath.Abs(a)
	cb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && filepath.Clean(ca) == filepath.Clean(cb)
}
