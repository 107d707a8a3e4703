package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 1 << 20

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// getJSON issues a single GET and decodes the body into v. There are no
// retries; the caller falls back to its cache on any error.
func getJSON(ctx context.Context, client *http.Client, url, userAgent string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return decodeJSON(io.LimitReader(resp.Body, maxBody), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// looseInt reads a JSON value as a non-negative integer. Numbers are
// truncated, numeric strings are parsed, and anything else is 0.
func looseInt(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var v interface{}
	if err := decodeJSON(bytes.NewReader(raw), &v); err != nil {
		return 0
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampNonNegative(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != f || f < 0 || f > 9.2e18 {
		return 0
	}
	return clampNonNegative(int64(f))
}

// looseString reads a JSON string as-is and a JSON number as its literal
// text. Anything else yields def.
func looseString(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var v interface{}
	if err := decodeJSON(bytes.NewReader(raw), &v); err != nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return def
	}
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
