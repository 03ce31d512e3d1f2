package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobsnap/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes a user's top matches to the logger.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per match. It never fails.
func (n *LogNotifier) Notify(_ context.Context, userID string, results []model.MatchResult) error {
	for i, r := range results {
		n.logger.Info("job match",
			"user", userID,
			"rank", i+1,
			"match", r.MatchPercentage,
			"company", r.Posting.Company,
			"title", r.Posting.Title,
			"skills", r.MatchedSkills,
			"url", applyURL(r.Posting),
		)
	}
	return nil
}

func applyURL(p model.Posting) string {
	if p.ApplicationURL != "" && p.ApplicationURL != "#" {
		return p.ApplicationURL
	}
	return p.URL
}
