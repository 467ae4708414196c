package app

import (
	"os"
	"path/filepath"
)

// DirName is the project directory every path lives under.
const DirName = ".curricula"

// Paths holds all resolved filesystem paths for the .curricula/ project directory.
// All fields are pre-computed strings.
type Paths struct {
	Root   string // .curricula/
	DB     string // .curricula/curricula.db
	Config string // .curricula/config.yaml
	Status string // .curricula/status.json

	ExportsDir string // .curricula/exports/

	RunDir   string // .curricula/run/
	PortFile string // .curricula/run/http.port
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, DirName)
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "curricula.db"),
		Config: filepath.Join(root, "config.yaml"),
		Status: filepath.Join(root, "status.json"),

		ExportsDir: filepath.Join(root, "exports"),

		RunDir:   filepath.Join(root, "run"),
		PortFile: filepath.Join(root, "run", "http.port"),
	}
}

// EnsureDirs creates all subdirectories under .curricula/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.ExportsDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether the project directory has been initialized.
func (p *Paths) Exists() bool {
	info, err := os.Stat(p.Root)
	return err == nil && info.IsDir()
}

// CleanEphemeral removes ephemeral runtime files (port file).
// Called on clean server shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PortFile)
}
