package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

const userAgent = "JobSnap/1.0"

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// getJSON issues a GET to url and decodes a 200 response body into out.
// Non-200 responses become *model.HTTPError so the retry decorator can
// classify them. label prefixes every error, e.g. "remotive search for go".
func getJSON(ctx context.Context, client *http.Client, label, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s: unexpected status %d", label, resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// decodeEach unmarshals every raw record into T on its own, so one record of
// the wrong shape costs only itself. bad counts the records that did not fit.
func decodeEach[T any](raw []json.RawMessage) (records []T, bad int) {
	records = make([]T, 0, len(raw))
	for _, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			bad++
			continue
		}
		records = append(records, rec)
	}
	return records, bad
}

// unreadable stands in for records that failed to decode. They carry no
// ExternalID, so the aggregator skips and counts them with the other ID-less
// records.
func unreadable(source string, n int) []model.Posting {
	out := make([]model.Posting, n)
	for i := range out {
		out[i] = model.Posting{Source: source}
	}
	return out
}
