package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/bot"
	"github.com/RehanAnsari17/Qloooooooo/internal/recs"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrSessionEnded = errors.New("chat session has ended")
	ErrSendInFlight = errors.New("a send for this session is already in flight")
)

// Recommender supplies restaurant cards for messages that ask for them.
type Recommender interface {
	Recommendations(ctx context.Context, location, cuisine string, limit int) []recs.Restaurant
}

// Archiver schedules a write-behind snapshot for a session. Implementations
// debounce; Schedule must be cheap and non-blocking.
type Archiver interface {
	Schedule(sessionID string)
}

type Service struct {
	repo          *Repo
	provider      bot.Provider
	recommender   Recommender
	archiver      Archiver // nil disables archiving
	contextWindow int

	mu       sync.Mutex
	inflight map[string]struct{}
}

const recommendationLimit = 5

func NewService(repo *Repo, provider bot.Provider, recommender Recommender, archiver Archiver, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	return &Service{
		repo:          repo,
		provider:      provider,
		recommender:   recommender,
		archiver:      archiver,
		contextWindow: contextWindowSize,
		inflight:      make(map[string]struct{}),
	}
}

// RegisterProfile opens a new active session for the profile and seeds it
// with the FoodieBot greeting.
func (s *Service) RegisterProfile(ctx context.Context, userID uint64, name string, age int, location string) (*Session, *Message, error) {
	sid, err := NewSessionID()
	if err != nil {
		return nil, nil, err
	}

	session := &Session{
		SessionID: sid,
		UserID:    userID,
		UserName:  name,
		UserAge:   age,
		Location:  location,
		Active:    true,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}

	greeting := &Message{
		MessageID: NewMessageID(),
		SessionID: sid,
		UserID:    userID,
		Sender:    SenderBot,
		Content:   bot.Greeting(name, location),
	}
	if err := s.repo.InsertMessage(ctx, greeting); err != nil {
		return nil, nil, err
	}

	s.scheduleArchive(sid)
	return session, greeting, nil
}

// SendMessage appends the user message, obtains the bot reply (with
// restaurant cards when the message asks for recommendations) and appends it.
// Exactly one user message followed by one bot message per call; a second
// send for the same session while one is pending is rejected.
func (s *Service) SendMessage(ctx context.Context, userID uint64, sessionID string, content string) (*Message, *Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, ErrEmptyMessage
	}

	if !s.beginSend(sessionID) {
		return nil, nil, ErrSendInFlight
	}
	defer s.endSend(sessionID)

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.Active {
		return nil, nil, ErrSessionEnded
	}

	userMsg := &Message{
		MessageID: NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Sender:    SenderUser,
		Content:   content,
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, nil, err
	}

	var restaurants []recs.Restaurant
	if s.recommender != nil && recs.ShouldRecommend(content) {
		restaurants = s.recommender.Recommendations(ctx, session.Location, recs.DetectCuisine(content), recommendationLimit)
	}

	reply, err := s.generateReply(ctx, session, content, restaurants)
	if err != nil {
		// degrade instead of failing the send: the transcript already has the
		// user message, so the conversation continues with a canned reply
		log.Printf("chat: provider failed session=%s err=%v", sessionID, err)
		reply = bot.FallbackReply(session.Location)
		restaurants = nil
	}

	botMsg := &Message{
		MessageID: NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Sender:    SenderBot,
		Content:   reply,
	}
	if len(restaurants) > 0 {
		payload, err := json.Marshal(restaurants)
		if err != nil {
			return nil, nil, err
		}
		botMsg.Restaurants = payload
	}
	if err := s.repo.InsertMessage(ctx, botMsg); err != nil {
		return nil, nil, err
	}

	s.scheduleArchive(sessionID)
	return userMsg, botMsg, nil
}

func (s *Service) generateReply(ctx context.Context, session *Session, content string, restaurants []recs.Restaurant) (string, error) {
	recentDesc, err := s.repo.ListRecentMessagesDesc(ctx, session.UserID, session.SessionID, s.contextWindow)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		names = append(names, r.Name)
	}

	msgs := make([]bot.Message, 0, len(recentDesc)+1)
	msgs = append(msgs, bot.Message{Role: "system", Content: bot.SystemPrompt})
	// reverse to ASC; the newest entry is the message being answered, which
	// gets wrapped with the profile and restaurant context
	for i := len(recentDesc) - 1; i >= 1; i-- {
		m := recentDesc[i]
		msgs = append(msgs, bot.Message{Role: m.Sender, Content: m.Content})
	}
	msgs = append(msgs, bot.Message{
		Role:    SenderUser,
		Content: bot.UserContext(session.UserName, session.UserAge, session.Location, content, names),
	})

	return s.provider.Chat(ctx, msgs)
}

// EndChat flips the session inactive and appends one closing message.
// Idempotent: ending an ended session succeeds without a second closing
// message.
func (s *Service) EndChat(ctx context.Context, userID uint64, sessionID string) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}

	flipped, err := s.repo.EndSession(ctx, sessionID, time.Now())
	if err != nil {
		return err
	}
	if !flipped {
		return nil
	}

	closing := &Message{
		MessageID: NewMessageID(),
		SessionID: sessionID,
		UserID:    userID,
		Sender:    SenderBot,
		Content:   bot.ClosingMessage,
	}
	if err := s.repo.InsertMessage(ctx, closing); err != nil {
		return err
	}

	s.scheduleArchive(sessionID)
	return nil
}

// Transcript returns the session plus its full ordered message list.
func (s *Service) Transcript(ctx context.Context, userID uint64, sessionID string) (*Session, []Message, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, msgs, nil
}

type SessionSummary struct {
	SessionID    string     `json:"id"`
	UserName     string     `json:"user_name"`
	CreatedAt    time.Time  `json:"created_at"`
	EndedAt      *time.Time `json:"ended_at"`
	MessageCount int64      `json:"message_count"`
	Active       bool       `json:"is_active"`
	Preview      string     `json:"preview"`
}

const previewLen = 100

// History lists the caller's sessions, newest first, with a preview taken
// from their first message.
func (s *Service) History(ctx context.Context, userID uint64) ([]SessionSummary, error) {
	sessions, err := s.repo.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		count, err := s.repo.CountMessages(ctx, sess.SessionID)
		if err != nil {
			return nil, err
		}

		preview := "New conversation"
		first, err := s.repo.FirstUserMessage(ctx, sess.SessionID)
		if err == nil {
			preview = first.Content
			// cut on rune boundaries so multi-byte text stays valid
			if r := []rune(preview); len(r) > previewLen {
				preview = string(r[:previewLen]) + "..."
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		out = append(out, SessionSummary{
			SessionID:    sess.SessionID,
			UserName:     sess.UserName,
			CreatedAt:    sess.CreatedAt,
			EndedAt:      sess.EndedAt,
			MessageCount: count,
			Active:       sess.Active,
			Preview:      preview,
		})
	}
	return out, nil
}

// ArchiveSession is the worker side of the write-behind queue: load the job,
// snapshot the session and upsert the archive row keyed by session id.
func (s *Service) ArchiveSession(ctx context.Context, jobID string) error {
	_ = s.repo.MarkArchiveJobRunning(ctx, jobID)

	job, err := s.repo.GetArchiveJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	session, err := s.repo.GetSessionBySessionID(ctx, job.SessionID)
	if err != nil {
		_ = s.repo.MarkArchiveJobFailed(ctx, jobID, err.Error())
		return err
	}
	msgs, err := s.repo.ListMessages(ctx, session.UserID, session.SessionID)
	if err != nil {
		_ = s.repo.MarkArchiveJobFailed(ctx, jobID, err.Error())
		return err
	}

	snap := Snapshot{
		SessionID: session.SessionID,
		UserName:  session.UserName,
		UserAge:   session.UserAge,
		Location:  session.Location,
		Active:    session.Active,
		CreatedAt: session.CreatedAt,
		EndedAt:   session.EndedAt,
		Messages:  make([]SnapshotMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		snap.Messages = append(snap.Messages, SnapshotMessage{
			ID:          m.MessageID,
			Sender:      m.Sender,
			Content:     m.Content,
			Restaurants: m.RestaurantList(),
			Timestamp:   m.CreatedAt,
		})
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		_ = s.repo.MarkArchiveJobFailed(ctx, jobID, err.Error())
		return err
	}

	if err := s.repo.UpsertArchive(ctx, &SessionArchive{
		SessionID:    session.SessionID,
		Snapshot:     payload,
		MessageCount: len(snap.Messages),
		Active:       session.Active,
		ArchivedAt:   time.Now(),
	}); err != nil {
		_ = s.repo.MarkArchiveJobFailed(ctx, jobID, err.Error())
		return err
	}

	return s.repo.MarkArchiveJobSucceeded(ctx, jobID)
}

// ValidateSessionOwner returns gorm.ErrRecordNotFound unless the session
// exists and belongs to the user.
func (s *Service) ValidateSessionOwner(ctx context.Context, userID uint64, sessionID string) error {
	_, err := s.ownedSession(ctx, userID, sessionID)
	return err
}

func (s *Service) ownedSession(ctx context.Context, userID uint64, sessionID string) (*Session, error) {
	session, err := s.repo.GetSessionBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		// hide existence from non-owners
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (s *Service) beginSend(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) endSend(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}

func (s *Service) scheduleArchive(sessionID string) {
	if s.archiver != nil {
		s.archiver.Schedule(sessionID)
	}
}
