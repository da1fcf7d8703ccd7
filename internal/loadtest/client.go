package loadtest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/briefmatch/internal/domain/model"
)

// sseMaxLine bounds a single data line; events carry full candidate records.
const sseMaxLine = 1 << 20

// httpClient wraps http.Client with a per-request timeout.
type httpClient struct {
	client  *http.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{}, timeout: timeout}
}

func (c *httpClient) checkHealth(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// streamMatch posts b and reads the event stream until the server closes it.
// A 404 is reported as a nil slice and no error.
func (c *httpClient) streamMatch(ctx context.Context, baseURL string, b model.Brief) ([]model.MatchEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal brief: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/match", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("match status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return readEvents(resp.Body)
}

// readEvents parses "data:" lines of a server-sent event stream.
func readEvents(r io.Reader) ([]model.MatchEvent, error) {
	var out []model.MatchEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), sseMaxLine)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ev model.MatchEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev); err != nil {
			return out, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}
