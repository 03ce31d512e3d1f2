package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

// CachedSource serves repeated queries from a Cache. Cache failures are
// logged and fall through to the wrapped source.
type CachedSource struct {
	inner  model.JobSource
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedSource(inner model.JobSource, c Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{inner: inner, cache: c, ttl: ttl, logger: logger}
}

func (s *CachedSource) Name() string {
	return s.inner.Name()
}

func (s *CachedSource) Search(ctx context.Context, q model.Query) ([]model.Posting, error) {
	key := queryKey(s.inner.Name(), q)

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var postings []model.Posting
		if jsonErr := json.Unmarshal(raw, &postings); jsonErr == nil {
			s.logger.Debug("source cache hit", "source", s.inner.Name(), "key", key)
			return postings, nil
		}
		s.logger.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, ErrNotFound):
		s.logger.Warn("cache read failed", "key", key, "error", err)
	}

	postings, err := s.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(postings); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return postings, nil
}

// queryKey is stable for equal queries regardless of term case or padding.
func queryKey(source string, q model.Query) string {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	return fmt.Sprintf("source:%s:%s:%d:%d", source, term, q.Page, q.Limit)
}
