package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/sheet"
)

const sampleCSV = "Rep,Weekly Sets,Weekly Shows\nAnn,5,2\n"

func TestNew(t *testing.T) {
	src, err := New(model.SourceConfig{Path: "data.csv", URL: "https://example.com/x.csv"})
	require.NoError(t, err)
	require.IsType(t, &FileSource{}, src)

	src, err = New(model.SourceConfig{URL: "https://example.com/x.csv", FetchTimeout: time.Second})
	require.NoError(t, err)
	httpSrc, ok := src.(*HTTPSource)
	require.True(t, ok)
	require.Equal(t, time.Second, httpSrc.Client.Timeout)

	src, err = New(model.SourceConfig{SheetID: "abc123", GID: "42"})
	require.NoError(t, err)
	require.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/export?format=csv&gid=42", src.String())

	_, err = New(model.SourceConfig{URL: "ftp://example.com/x.csv"})
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = New(model.SourceConfig{})
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestGoogleSheetCSVURLDefaultsGID(t *testing.T) {
	require.Equal(t, "https://docs.google.com/spreadsheets/d/id/export?format=csv&gid=0", GoogleSheetCSVURL("id", ""))
}

func TestHTTPSourceFetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := NewHTTPSource(srv.URL+"/export.csv", "", 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []sheet.Row{{"Rep", "Weekly Sets", "Weekly Shows"}, {"Ann", "5", "2"}}, rows)
}

func TestHTTPSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "", 0).Fetch(context.Background())
	require.ErrorIs(t, err, ErrStatus)
	require.ErrorContains(t, err, "404")
}

func TestHTTPSourceTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPSource(srv.URL, "", 50*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPSourceWorkbook(t *testing.T) {
	data := workbookBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	rows, err := NewHTTPSource(srv.URL+"/download", "", 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, sheet.Row{"Ann", "5", "2"}, rows[1])
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "sheet.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	rows, err := (&FileSource{Path: csvPath}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	xlsxPath := filepath.Join(dir, "sheet.XLSX")
	require.NoError(t, os.WriteFile(xlsxPath, workbookBytes(t), 0o644))
	rows, err = (&FileSource{Path: xlsxPath}).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, sheet.Row{"Rep", "Weekly Sets", "Weekly Shows"}, rows[0])

	_, err = (&FileSource{Path: filepath.Join(dir, "missing.csv")}).Fetch(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&FileSource{Path: csvPath}).Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	w, err := NewWatcher(path, 100*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	var changes atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { changes.Add(1) }) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return changes.Load() == 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func workbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Rep", "Weekly Sets", "Weekly Shows"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Ann", 5, 2}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}
