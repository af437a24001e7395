package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateSession(ctx context.Context, s *Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetSessionBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// EndSession flips active -> false exactly once. Returns true when this call
// performed the transition, false when the session had already ended.
func (r *Repo) EndSession(ctx context.Context, sessionID string, endedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Session{}).
		Where("session_id = ? AND active = ?", sessionID, true).
		Updates(map[string]any{
			"active":   false,
			"ended_at": endedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) ListSessionsByUser(ctx context.Context, userID uint64) ([]Session, error) {
	var sessions []Session
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns the full transcript in append (ASC id) order.
func (r *Repo) ListMessages(ctx context.Context, userID uint64, sessionID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListRecentMessagesDesc returns the most recent messages newest -> oldest,
// for building the provider context window.
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, userID uint64, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Repo) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return n, err
}

// FirstUserMessage returns the earliest user-sent message of a session, used
// for history previews. gorm.ErrRecordNotFound when the user never spoke.
func (r *Repo) FirstUserMessage(ctx context.Context, sessionID string) (*Message, error) {
	var m Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND sender = ?", sessionID, SenderUser).
		Order("id ASC").
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Archive job CRUD

func (r *Repo) CreateArchiveJob(ctx context.Context, job *ArchiveJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetArchiveJobByID(ctx context.Context, id string) (*ArchiveJob, error) {
	var j ArchiveJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkArchiveJobRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&ArchiveJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkArchiveJobSucceeded(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&ArchiveJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": JobSucceeded,
			"error":  nil,
		}).Error
}

func (r *Repo) MarkArchiveJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&ArchiveJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": JobFailed,
			"error":  errMsg,
		}).Error
}

// UpsertArchive writes the snapshot idempotently: the same session id always
// resolves to the same row, never a duplicate.
func (r *Repo) UpsertArchive(ctx context.Context, a *SessionArchive) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"snapshot", "message_count", "active", "archived_at",
		}),
	}).Create(a).Error
}

func (r *Repo) GetArchiveBySessionID(ctx context.Context, sessionID string) (*SessionArchive, error) {
	var a SessionArchive
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
