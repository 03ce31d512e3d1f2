// Package match scores cached postings against a user's skills.
package match

import (
	"math"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/amishk599/jobsnap/internal/model"
)

const (
	tagWeight         = 5
	titleWeight       = 4
	descriptionWeight = 2

	maxScore         = 100
	maxMatchedSkills = 5
)

var wordSplit = regexp.MustCompile(`[\s,.-]+`)

// Scorer computes keyword-overlap scores using a synonym table.
type Scorer struct {
	idx index
}

func NewScorer(s Synonyms) *Scorer {
	return &Scorer{idx: newIndex(s)}
}

var defaultScorer = NewScorer(DefaultSynonyms)

// Score scores p against skills with the default synonym table.
func Score(p model.Posting, skills []string) model.MatchResult {
	return defaultScorer.Score(p, skills)
}

// Rank scores every posting with the default synonym table.
func Rank(postings []model.Posting, skills []string) []model.MatchResult {
	return defaultScorer.Rank(postings, skills)
}

// NormalizeSkills lowercases and trims skills, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Score runs the tag, title and description passes, then adds the
// multi-skill bonus. skills are normalized first.
func (s *Scorer) Score(p model.Posting, skills []string) model.MatchResult {
	userSkills := NormalizeSkills(skills)
	skillSet := make(map[string]struct{}, len(userSkills))
	for _, sk := range userSkills {
		skillSet[sk] = struct{}{}
	}

	var (
		score   int
		matched []string
	)
	record := func(skill string) {
		if !slices.Contains(matched, skill) {
			matched = append(matched, skill)
		}
	}
	hit := func(word string) bool {
		if _, ok := skillSet[word]; ok {
			return true
		}
		return s.idx.related(word, skillSet)
	}

	for _, tag := range p.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && hit(tag) {
			score += tagWeight
			record(tag)
		}
	}

	for _, word := range splitWords(p.Title) {
		if hit(word) {
			score += titleWeight
			record(word)
		}
	}

	if p.Description != "" {
		words := make(map[string]struct{})
		for _, w := range splitWords(p.Description) {
			words[w] = struct{}{}
		}
		// A skill already credited by the tag or title pass earns nothing here.
		for _, sk := range userSkills {
			if _, ok := words[sk]; ok && !slices.Contains(matched, sk) {
				score += descriptionWeight
				record(sk)
			}
		}
	}

	switch {
	case len(matched) > 3:
		score += 10
	case len(matched) > 1:
		score += 5
	}

	if len(matched) > maxMatchedSkills {
		matched = matched[:maxMatchedSkills]
	}
	if matched == nil {
		matched = []string{}
	}

	return model.MatchResult{
		Posting:         p,
		MatchScore:      score,
		MatchPercentage: percentage(score),
		MatchedSkills:   matched,
	}
}

// Rank scores postings and orders them by score, highest first. Equal scores
// keep their input order.
func (s *Scorer) Rank(postings []model.Posting, skills []string) []model.MatchResult {
	results := make([]model.MatchResult, len(postings))
	for i, p := range postings {
		results[i] = s.Score(p, skills)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}

func percentage(score int) int {
	return min(int(math.Round(float64(score)/maxScore*100)), 100)
}

func splitWords(s string) []string {
	parts := wordSplit.Split(strings.ToLower(s), -1)
	out := parts[:0]
	for _, w := range parts {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
