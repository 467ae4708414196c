package ports

import (
	"context"
	"io"

	"github.com/corey/curricula/internal/domain/curriculum"
	"github.com/corey/curricula/internal/domain/report"
)

// DatasetLoader parses a curriculum workbook into raw tables. source names
// the workbook in errors. A missing sheet or column is a *curriculum.LoadError.
type DatasetLoader interface {
	Load(ctx context.Context, source string, r io.Reader) (*curriculum.Tables, error)
}

// Exporter renders a report bundle as a workbook.
type Exporter interface {
	Export(w io.Writer, b *report.Bundle) error
}
