package source

import (
	"context"
	"fmt"
	"os"

	"github.com/verte-zerg/weekboard/internal/sheet"
)

// FileSource reads a local CSV file or .xlsx workbook on every fetch.
type FileSource struct {
	Path  string
	Sheet string
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]sheet.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return decodeRows(data, isWorkbook(s.Path), s.Sheet)
}

func (s *FileSource) String() string {
	return s.Path
}
