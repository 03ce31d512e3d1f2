package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobsnap/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts match digests to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	gap        time.Duration // pause between messages
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		gap:        500 * time.Millisecond,
	}
}

// Notify sends each match as a separate Block Kit message.
// Returns an error only if every message fails; individual failures are logged.
func (s *SlackNotifier) Notify(ctx context.Context, userID string, results []model.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	failures := 0
	for i, r := range results {
		if i > 0 {
			if err := sleep(ctx, s.gap); err != nil {
				return err
			}
		}

		if err := s.send(ctx, buildPayload(userID, i+1, r)); err != nil {
			s.logger.Error("slack notification failed",
				"company", r.Posting.Company, "title", r.Posting.Title, "error", err)
			failures++
		}
	}

	if failures == len(results) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "user", userID, "sent", len(results)-failures, "failed", failures)
	return nil
}

// send posts payload, retrying once after a 429.
func (s *SlackNotifier) send(ctx context.Context, payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		if err := sleep(ctx, retryAfter); err != nil {
			return err
		}
		if status, _, err = s.post(ctx, body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func buildPayload(userID string, rank int, r model.MatchResult) slackPayload {
	p := r.Posting

	skills := "none"
	if len(r.MatchedSkills) > 0 {
		skills = strings.Join(r.MatchedSkills, ", ")
	}
	location := p.Location
	if location == "" {
		location = "Not specified"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: fmt.Sprintf("#%d %s: %s", rank, p.Company, p.Title)},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Match:*\n%d%%", r.MatchPercentage)},
				{Type: "mrkdwn", Text: "*Skills:*\n" + skills},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Location:*\n" + location},
				{Type: "mrkdwn", Text: "*Type:*\n" + p.JobType},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "_For " + userID + " via " + p.Source + "_"},
		},
		{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "Apply Now"},
					URL:   applyURL(p),
					Style: "primary",
				},
			},
		},
		{Type: "divider"},
	}

	return slackPayload{Blocks: blocks}
}
