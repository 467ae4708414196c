// Package app wires together all adapters and domain logic.
// It provides lifecycle management for curricula: create, load, start, stop.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/corey/curricula/internal/adapters/bbolt"
	fsw "github.com/corey/curricula/internal/adapters/fsnotify"
	"github.com/corey/curricula/internal/adapters/web"
	"github.com/corey/curricula/internal/adapters/xlsx"
	"github.com/corey/curricula/internal/domain/status"
	"github.com/corey/curricula/internal/ports"
)

// ErrNoStore is returned by history and plan operations when the app runs
// without a project store (single-workbook mode).
var ErrNoStore = errors.New("no project store: run `curricula init` first")

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    *Settings

	Store     ports.Storage // nil in single-workbook mode
	Watcher   ports.Watcher // created by Start
	WebServer *web.Server
	Loader    ports.DatasetLoader
	Exporter  ports.Exporter

	log      *slog.Logger
	subjects map[string]*subject
	order    []string // catalog order
	httpPort int
	now      func() time.Time
	quiet    time.Duration
	reloads  atomic.Uint64
	started  time.Time
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	DBPath      string    // path to bbolt file (default: .curricula/curricula.db)
	Settings    *Settings // nil = read .curricula/config.yaml
	HTTPPort    int       // overrides settings; 0 = settings or computed from project root

	// Dataset switches to single-workbook mode: the catalog is ignored, the
	// workbook becomes the only subject and no store is opened.
	Dataset string

	Logger   *slog.Logger        // default: text to stderr at the settings level
	Loader   ports.DatasetLoader // default: xlsx loader
	Exporter ports.Exporter      // default: xlsx exporter
	Now      func() time.Time    // default: time.Now
	Quiet    time.Duration       // watcher debounce (default: fsnotify.DefaultQuiet)
}

// New creates an App with all dependencies wired. Datasets are not read
// until LoadSubjects; services do not run until Start.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	paths := NewPaths(cfg.ProjectRoot)
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}

	settings := cfg.Settings
	if settings == nil {
		var err error
		if settings, err = LoadSettings(paths.Config); err != nil {
			return nil, err
		}
	}
	if cfg.Dataset != "" {
		ds, err := datasetSettings(cfg.Dataset, settings)
		if err != nil {
			return nil, err
		}
		settings = ds
	}

	log := cfg.Logger
	if log == nil {
		log = NewLogger(os.Stderr, settings.LogLevel)
	}
	if cfg.Loader == nil {
		cfg.Loader = xlsx.NewLoader()
	}
	if cfg.Exporter == nil {
		cfg.Exporter = xlsx.NewExporter()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Quiet == 0 {
		cfg.Quiet = fsw.DefaultQuiet
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = settings.HTTPPort
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Settings:    settings,
		Loader:      cfg.Loader,
		Exporter:    cfg.Exporter,
		log:         log,
		subjects:    make(map[string]*subject, len(settings.Subjects)),
		httpPort:    cfg.HTTPPort,
		now:         cfg.Now,
		quiet:       cfg.Quiet,
	}
	for _, sc := range settings.Subjects {
		a.subjects[sc.Code] = &subject{conf: sc, path: sc.DatasetPath(cfg.ProjectRoot)}
		a.order = append(a.order, sc.Code)
	}

	if cfg.Dataset == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create project dir: %w", err)
		}
		store, err := bbolt.NewStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.Store = store
	}

	a.WebServer = web.NewServer(a, log, paths.PortFile)
	return a, nil
}

// datasetSettings builds the one-subject catalog of single-workbook mode.
// The subject code is the workbook's base name.
func datasetSettings(dataset string, base *Settings) (*Settings, error) {
	abs, err := filepath.Abs(dataset)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset: %w", err)
	}
	name := filepath.Base(abs)
	code := strings.TrimSuffix(name, filepath.Ext(name))
	return &Settings{
		LogLevel: base.LogLevel,
		HTTPPort: base.HTTPPort,
		Subjects: []Subject{{Code: code, Name: name, Dataset: abs, Active: true}},
	}, nil
}

// Start begins serving (HTTP API + dataset watcher).
func (a *App) Start() error {
	a.started = a.now()
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create project dirs: %w", err)
	}

	httpPort := a.httpPort
	if httpPort == 0 {
		httpPort = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(httpPort); err != nil {
		return fmt.Errorf("start http: %w", err)
	}

	// Hot reload is non-fatal if setup fails.
	watcher, err := fsw.NewWatcher(a.quiet)
	if err != nil {
		a.log.Warn("dataset watcher unavailable", "err", err)
	} else if err := watcher.Watch(a.datasetPaths(), a.onDatasetChanged); err != nil {
		a.log.Warn("dataset watcher unavailable", "err", err)
		watcher.Stop()
	} else {
		a.Watcher = watcher
	}

	a.writeStatus()
	return nil
}

// Stop shuts down all services and closes the store.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.WebServer.Stop()
	// One-shot commands never started serving; the port file may belong to
	// a server in another process.
	if !a.started.IsZero() {
		a.Paths.CleanEphemeral()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// Reloads returns how many dataset reloads the watcher has triggered.
func (a *App) Reloads() uint64 { return a.reloads.Load() }

// writeStatus writes the status file. Skipped in single-workbook mode.
func (a *App) writeStatus() {
	if a.Store == nil {
		return
	}
	subjects := make([]status.Subject, 0, len(a.order))
	for _, code := range a.order {
		sub := a.subjects[code]
		st := status.Subject{Code: code}
		if s := sub.state.Load(); s != nil {
			if s.idx != nil {
				st.Loaded = true
				st.Codes = s.codes()
			}
			if s.err != nil {
				st.Error = s.err.Error()
			}
		}
		subjects = append(subjects, st)
	}
	data := status.Generate(subjects, a.reloads.Load(), a.now())
	data.Port = a.WebServer.Port()
	if err := status.WriteJSON(a.Paths.Status, data); err != nil {
		a.log.Warn("write status", "path", a.Paths.Status, "err", err)
	}
}
