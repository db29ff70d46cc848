package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/verte-zerg/weekboard/internal/sheet"
)

// HTTPSource downloads a CSV export or an .xlsx workbook.
type HTTPSource struct {
	URL    string
	Sheet  string
	Client *http.Client
}

// NewHTTPSource returns a source for rawURL. A zero timeout never times out.
func NewHTTPSource(rawURL, sheetName string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		Sheet:  sheetName,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and decodes the sheet.
func (s *HTTPSource) Fetch(ctx context.Context) ([]sheet.Row, error) {
	resp, err := httpRequest(ctx, s.client(), s.URL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeRows(data, s.workbook(resp), s.Sheet)
}

func (s *HTTPSource) String() string {
	return s.URL
}

func (s *HTTPSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *HTTPSource) workbook(resp *http.Response) bool {
	if strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		return true
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return false
	}
	return isWorkbook(u.Path)
}

func httpRequest(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
