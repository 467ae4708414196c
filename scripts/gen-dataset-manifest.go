//go:build ignore

// gen-dataset-manifest walks a directory of curriculum workbooks, computes
// SHA256 + file size per .xlsx, loads each one and records its code counts,
// then writes manifest.json next to the catalog.
//
// Usage: go run scripts/gen-dataset-manifest.go [--dir datasets] [--out manifest.json]
package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/curricula/internal/adapters/xlsx"
	"github.com/corey/curricula/internal/domain/curriculum"
)

type DatasetInfo struct {
	File     string         `json:"file"`
	Size     int64          `json:"size"`
	SHA256   string         `json:"sha256"`
	Counts   map[string]int `json:"counts,omitempty"`
	Dangling int            `json:"dangling,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type Manifest struct {
	Version  int                    `json:"version"`
	Datasets map[string]DatasetInfo `json:"datasets"`
}

func main() {
	dir := flag.String("dir", "datasets", "Directory containing .xlsx workbooks")
	out := flag.String("out", "manifest.json", "Output manifest file")
	flag.Parse()

	manifest := Manifest{
		Version:  1,
		Datasets: make(map[string]DatasetInfo),
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading directory %s: %v\n", *dir, err)
		os.Exit(1)
	}

	loader := xlsx.NewLoader()
	failed := 0
	for _, entry := range entries {
		name := entry.Name()
		// Skip lock files Excel leaves next to open workbooks.
		if entry.IsDir() || !strings.HasSuffix(name, ".xlsx") || strings.HasPrefix(name, "~$") {
			continue
		}
		subject := strings.TrimSuffix(name, filepath.Ext(name))

		path := filepath.Join(*dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
			continue
		}
		sum := sha256.Sum256(data)
		info := DatasetInfo{
			File:   name,
			Size:   int64(len(data)),
			SHA256: hex.EncodeToString(sum[:]),
		}

		tables, err := loader.Load(context.Background(), name, bytes.NewReader(data))
		if err != nil {
			info.Error = err.Error()
			failed++
		} else {
			idx := curriculum.Build(*tables)
			info.Counts = make(map[string]int, len(curriculum.Classes))
			for _, c := range curriculum.Classes {
				info.Counts[c.String()] = idx.Count(c)
			}
			info.Dangling = len(idx.Dangling())
		}
		manifest.Datasets[subject] = info
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling manifest: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s with %d datasets (%d failed to load)\n", *out, len(manifest.Datasets), failed)
}
