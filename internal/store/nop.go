package store

import (
	"context"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Writes are discarded and
// reads find nothing, so a fetch cycle returns its result without persisting.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Upsert(_ context.Context, p model.Posting) (model.Posting, error) {
	if p.CachedAt.IsZero() {
		p.CachedAt = time.Now().UTC()
	}
	return p, nil
}

func (s *NopStore) Search(context.Context, string, model.PageRequest) ([]model.Posting, int, error) {
	return []model.Posting{}, 0, nil
}

func (s *NopStore) All(context.Context) ([]model.Posting, error)          { return []model.Posting{}, nil }
func (s *NopStore) Count(context.Context) (int, error)                    { return 0, nil }
func (s *NopStore) SaveProfile(context.Context, model.SkillProfile) error { return nil }

func (s *NopStore) Profile(context.Context, string) (model.SkillProfile, error) {
	return model.SkillProfile{}, model.ErrProfileNotFound
}

func (s *NopStore) Purge(context.Context, time.Duration) (int64, error) { return 0, nil }
