package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS postings (
	external_id      TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '#',
	application_url  TEXT NOT NULL DEFAULT '#',
	location         TEXT NOT NULL DEFAULT '',
	salary           TEXT NOT NULL DEFAULT '',
	job_type         TEXT NOT NULL DEFAULT '',
	experience_level TEXT NOT NULL DEFAULT '',
	published_at     INTEGER NOT NULL DEFAULT 0,
	cached_at        INTEGER NOT NULL,
	premium_only     INTEGER NOT NULL DEFAULT 0,
	source           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_postings_cached_at ON postings (cached_at DESC, external_id);

CREATE TABLE IF NOT EXISTS posting_tags (
	external_id TEXT NOT NULL,
	position    INTEGER NOT NULL,
	tag         TEXT NOT NULL,
	PRIMARY KEY (external_id, position)
);
CREATE INDEX IF NOT EXISTS idx_posting_tags_tag ON posting_tags (tag);

CREATE TABLE IF NOT EXISTS skill_profiles (
	user_id    TEXT PRIMARY KEY,
	skills     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

const postingColumns = `external_id, title, company, description, url, application_url,
	location, salary, job_type, experience_level, published_at, cached_at, premium_only, source`

// tagBatch bounds the number of bind variables in one tag lookup.
const tagBatch = 500

// SQLiteStore persists postings and skill profiles in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions from
	// tripping over each other with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Upsert inserts p or overwrites the stored posting with the same ExternalID,
// replacing its tags. A zero CachedAt is stamped with the current time.
func (s *SQLiteStore) Upsert(ctx context.Context, p model.Posting) (model.Posting, error) {
	if p.ExternalID == "" {
		return model.Posting{}, errors.New("upserting posting: empty external id")
	}
	if p.CachedAt.IsZero() {
		p.CachedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Posting{}, fmt.Errorf("upserting %s: begin: %w", p.ExternalID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO postings (`+postingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			description = excluded.description,
			url = excluded.url,
			application_url = excluded.application_url,
			location = excluded.location,
			salary = excluded.salary,
			job_type = excluded.job_type,
			experience_level = excluded.experience_level,
			published_at = excluded.published_at,
			cached_at = excluded.cached_at,
			premium_only = excluded.premium_only,
			source = excluded.source`,
		p.ExternalID, p.Title, p.Company, p.Description, p.URL, p.ApplicationURL,
		p.Location, p.Salary, p.JobType, p.ExperienceLevel,
		unixNano(p.PublishedAt), unixNano(p.CachedAt), p.PremiumOnly, p.Source,
	)
	if err != nil {
		return model.Posting{}, fmt.Errorf("upserting %s: %w", p.ExternalID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM posting_tags WHERE external_id = ?", p.ExternalID); err != nil {
		return model.Posting{}, fmt.Errorf("clearing tags for %s: %w", p.ExternalID, err)
	}
	for i, tag := range p.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO posting_tags (external_id, position, tag) VALUES (?, ?, ?)",
			p.ExternalID, i, tag,
		); err != nil {
			return model.Posting{}, fmt.Errorf("writing tags for %s: %w", p.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Posting{}, fmt.Errorf("upserting %s: commit: %w", p.ExternalID, err)
	}
	return p, nil
}

// Search returns one page of postings whose title, company, description or
// any tag contains query (case-insensitive), newest first, plus the total
// number of matches. An empty query matches everything.
func (s *SQLiteStore) Search(ctx context.Context, query string, page model.PageRequest) ([]model.Posting, int, error) {
	page = page.Normalize()

	where := ""
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = `WHERE lower(title) LIKE ? ESCAPE '\'
			OR lower(company) LIKE ? ESCAPE '\'
			OR lower(description) LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM posting_tags t
				WHERE t.external_id = postings.external_id AND lower(t.tag) LIKE ? ESCAPE '\')`
		args = []any{pattern, pattern, pattern, pattern}
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM postings "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting search results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postingColumns+" FROM postings "+where+
			" ORDER BY cached_at DESC, external_id ASC LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("searching postings: %w", err)
	}
	postings, err := s.scanPostings(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return postings, total, nil
}

// All returns every stored posting, newest first.
func (s *SQLiteStore) All(ctx context.Context) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postingColumns+" FROM postings ORDER BY cached_at DESC, external_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	return s.scanPostings(ctx, rows)
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM postings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting postings: %w", err)
	}
	return n, nil
}

// Purge deletes postings cached before now-olderThan and returns how many
// were removed.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := unixNano(time.Now().Add(-olderThan))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purging postings: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posting_tags WHERE external_id IN
		(SELECT external_id FROM postings WHERE cached_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purging tags older than %v: %w", olderThan, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM postings WHERE cached_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging postings older than %v: %w", olderThan, err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("purging postings: commit: %w", err)
	}
	return n, nil
}

// SaveProfile replaces the user's skill profile wholesale.
func (s *SQLiteStore) SaveProfile(ctx context.Context, profile model.SkillProfile) error {
	skills, err := json.Marshal(profile.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills for %s: %w", profile.UserID, err)
	}
	updated := profile.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO skill_profiles (user_id, skills, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET skills = excluded.skills, updated_at = excluded.updated_at`,
		profile.UserID, string(skills), unixNano(updated),
	)
	if err != nil {
		return fmt.Errorf("saving profile for %s: %w", profile.UserID, err)
	}
	return nil
}

// Profile returns model.ErrProfileNotFound when the user has no profile.
func (s *SQLiteStore) Profile(ctx context.Context, userID string) (model.SkillProfile, error) {
	var (
		raw     string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT skills, updated_at FROM skill_profiles WHERE user_id = ?", userID,
	).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SkillProfile{}, model.ErrProfileNotFound
	}
	if err != nil {
		return model.SkillProfile{}, fmt.Errorf("loading profile for %s: %w", userID, err)
	}

	profile := model.SkillProfile{UserID: userID, UpdatedAt: fromUnixNano(updated)}
	if err := json.Unmarshal([]byte(raw), &profile.Skills); err != nil {
		return model.SkillProfile{}, fmt.Errorf("decoding skills for %s: %w", userID, err)
	}
	return profile, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) scanPostings(ctx context.Context, rows *sql.Rows) ([]model.Posting, error) {
	defer rows.Close()

	postings := []model.Posting{}
	for rows.Next() {
		var (
			p                   model.Posting
			published, cachedAt int64
		)
		if err := rows.Scan(
			&p.ExternalID, &p.Title, &p.Company, &p.Description, &p.URL, &p.ApplicationURL,
			&p.Location, &p.Salary, &p.JobType, &p.ExperienceLevel,
			&published, &cachedAt, &p.PremiumOnly, &p.Source,
		); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		p.PublishedAt = fromUnixNano(published)
		p.CachedAt = fromUnixNano(cachedAt)
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings: %w", err)
	}
	// Release the single connection before the tag lookup.
	rows.Close()

	if err := s.attachTags(ctx, postings); err != nil {
		return nil, err
	}
	return postings, nil
}

func (s *SQLiteStore) attachTags(ctx context.Context, postings []model.Posting) error {
	index := make(map[string]int, len(postings))
	for i, p := range postings {
		index[p.ExternalID] = i
	}

	for start := 0; start < len(postings); start += tagBatch {
		end := min(start+tagBatch, len(postings))
		ids := make([]any, 0, end-start)
		for _, p := range postings[start:end] {
			ids = append(ids, p.ExternalID)
		}

		rows, err := s.db.QueryContext(ctx,
			"SELECT external_id, tag FROM posting_tags WHERE external_id IN (?"+
				strings.Repeat(", ?", len(ids)-1)+") ORDER BY external_id, position",
			ids...,
		)
		if err != nil {
			return fmt.Errorf("loading tags: %w", err)
		}
		for rows.Next() {
			var id, tag string
			if err := rows.Scan(&id, &tag); err != nil {
				rows.Close()
				return fmt.Errorf("scanning tag: %w", err)
			}
			i := index[id]
			postings[i].Tags = append(postings[i].Tags, tag)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating tags: %w", err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
