// Package source retrieves the sales sheet as rows from HTTP(S) or local files.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/sheet"
)

var (
	// ErrStatus is returned for a non-2xx HTTP response.
	ErrStatus = errors.New("unexpected response status")
	// ErrUnsupported is returned for an unusable source configuration.
	ErrUnsupported = errors.New("unsupported source")
)

const googleExportURL = "https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s"

// Source yields the current rows of the sheet.
type Source interface {
	Fetch(ctx context.Context) ([]sheet.Row, error)
	String() string
}

// New builds the source for cfg. A local path wins over a URL, and a URL
// over a Google sheet id.
func New(cfg model.SourceConfig) (Source, error) {
	switch {
	case cfg.Path != "":
		return &FileSource{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	case cfg.URL != "":
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid source url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
		}
		return NewHTTPSource(cfg.URL, cfg.Sheet, cfg.FetchTimeout), nil
	case cfg.SheetID != "":
		return NewHTTPSource(GoogleSheetCSVURL(cfg.SheetID, cfg.GID), "", cfg.FetchTimeout), nil
	default:
		return nil, fmt.Errorf("%w: no url, path or sheet id", ErrUnsupported)
	}
}

// GoogleSheetCSVURL is the CSV export URL of one tab of a Google sheet.
// An empty gid selects the first tab.
func GoogleSheetCSVURL(id, gid string) string {
	if gid == "" {
		gid = "0"
	}
	return fmt.Sprintf(googleExportURL, url.PathEscape(id), url.QueryEscape(gid))
}

func isWorkbook(name string) bool {
	return strings.EqualFold(path.Ext(name), ".xlsx")
}

func decodeRows(data []byte, workbook bool, sheetName string) ([]sheet.Row, error) {
	if workbook {
		rows, err := sheet.ReadWorkbook(bytes.NewReader(data), sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook: %w", err)
		}
		return rows, nil
	}
	return sheet.Tokenize(string(data)), nil
}
