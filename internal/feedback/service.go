package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
)

var ErrBadPreference = errors.New(`preference must be "like" or "dislike"`)

// MaxCommentLen is the free-text cap; longer input is cut at the boundary.
const MaxCommentLen = 500

type Service struct {
	repo *Repo

	// append-only local log of every submission, never read back here
	logw io.Writer
}

func NewService(repo *Repo, logw io.Writer) *Service {
	return &Service{repo: repo, logw: logw}
}

type Submission struct {
	UserID         uint64
	SessionID      string
	RestaurantID   string
	RestaurantName string
	Preference     string
	Comment        *string // nil when the user skipped the prompt
}

// Submit validates and upserts the preference, then appends one line to the
// local feedback log. The log write is best-effort.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Preference, error) {
	if sub.Preference != PrefLike && sub.Preference != PrefDislike {
		return nil, ErrBadPreference
	}

	comment := sub.Comment
	if comment != nil {
		trimmed := truncate(*comment, MaxCommentLen)
		if trimmed == "" {
			comment = nil
		} else {
			comment = &trimmed
		}
	}

	p := &Preference{
		FeedbackID:     uuid.NewString(),
		UserID:         sub.UserID,
		SessionID:      sub.SessionID,
		RestaurantID:   sub.RestaurantID,
		RestaurantName: sub.RestaurantName,
		Preference:     sub.Preference,
		Comment:        comment,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.appendLog(p)
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uint64) ([]Preference, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListBySession(ctx context.Context, userID uint64, sessionID string) ([]Preference, error) {
	return s.repo.ListBySession(ctx, userID, sessionID)
}

type logEntry struct {
	Timestamp      time.Time `json:"ts"`
	UserID         uint64    `json:"user_id"`
	SessionID      string    `json:"session_id"`
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Preference     string    `json:"preference"`
	Comment        *string   `json:"comment"`
}

func (s *Service) appendLog(p *Preference) {
	if s.logw == nil {
		return
	}
	line, err := json.Marshal(logEntry{
		Timestamp:      time.Now(),
		UserID:         p.UserID,
		SessionID:      p.SessionID,
		RestaurantID:   p.RestaurantID,
		RestaurantName: p.RestaurantName,
		Preference:     p.Preference,
		Comment:        p.Comment,
	})
	if err != nil {
		log.Printf("feedback: marshal log entry: %v", err)
		return
	}
	if _, err := s.logw.Write(append(line, '\n')); err != nil {
		log.Printf("feedback: write log entry: %v", err)
	}
}

// truncate cuts at a rune boundary so a multi-byte character is never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
