package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobsnap/internal/model"
)

const skillsSampleSize = 10

// MatchPage is one page of ranked postings for a user.
type MatchPage struct {
	Results          []model.MatchResult
	Pagination       model.Pagination
	UserSkillsSample []string
}

// Matcher ranks the cached posting pool against a user's stored skills.
type Matcher struct {
	postings model.PostingStore
	profiles model.ProfileStore
	scorer   *Scorer
	logger   *slog.Logger
}

func NewMatcher(postings model.PostingStore, profiles model.ProfileStore, scorer *Scorer, logger *slog.Logger) *Matcher {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &Matcher{postings: postings, profiles: profiles, scorer: scorer, logger: logger}
}

// Match returns page req of the user's ranked postings. A user without a
// profile or without skills gets the unscored listing, newest first.
func (m *Matcher) Match(ctx context.Context, userID string, req model.PageRequest) (MatchPage, error) {
	req = req.Normalize()

	var skills []string
	profile, err := m.profiles.Profile(ctx, userID)
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		m.logger.Debug("no skill profile, listing unscored", "user", userID)
	case err != nil:
		return MatchPage{}, fmt.Errorf("loading profile for %s: %w", userID, err)
	default:
		skills = NormalizeSkills(profile.Skills)
	}

	pool, err := m.postings.All(ctx)
	if err != nil {
		return MatchPage{}, fmt.Errorf("loading postings: %w", err)
	}

	var ranked []model.MatchResult
	if len(skills) == 0 {
		ranked = unscored(pool)
	} else {
		ranked = m.scorer.Rank(pool, skills)
	}

	sample := skills[:min(len(skills), skillsSampleSize)]
	if sample == nil {
		sample = []string{}
	}

	m.logger.Debug("ranked postings", "user", userID, "skills", len(skills), "postings", len(ranked))

	return MatchPage{
		Results:          model.Paginate(ranked, req),
		Pagination:       model.NewPagination(req, len(ranked)),
		UserSkillsSample: sample,
	}, nil
}

func unscored(postings []model.Posting) []model.MatchResult {
	out := make([]model.MatchResult, len(postings))
	for i, p := range postings {
		out[i] = model.MatchResult{Posting: p, MatchedSkills: []string{}}
	}
	return out
}
