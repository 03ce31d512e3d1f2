package resume

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

// Importer extracts skills from a résumé and stores them as the user's profile.
type Importer struct {
	profiles model.ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewImporter(profiles model.ProfileStore, logger *slog.Logger) *Importer {
	return &Importer{profiles: profiles, logger: logger, now: time.Now}
}

// Import replaces userID's skill profile with the skills found in data.
func (im *Importer) Import(ctx context.Context, userID, mime string, data []byte) (model.SkillProfile, error) {
	text, err := ExtractText(mime, data)
	if err != nil {
		return model.SkillProfile{}, fmt.Errorf("extracting résumé text: %w", err)
	}

	profile := model.SkillProfile{
		UserID:    userID,
		Skills:    ExtractSkills(text),
		UpdatedAt: im.now().UTC(),
	}
	if err := im.profiles.SaveProfile(ctx, profile); err != nil {
		return model.SkillProfile{}, err
	}

	im.logger.Info("skill profile updated", "user", userID, "skills", len(profile.Skills))
	return profile, nil
}
