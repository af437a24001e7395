package feedback

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Upsert stores the preference; a second submission for the same
// (session, restaurant) pair overwrites polarity and comment in place.
func (r *Repo) Upsert(ctx context.Context, p *Preference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "restaurant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"feedback_id", "preference", "comment", "restaurant_name", "updated_at",
		}),
	}).Create(p).Error
}

func (r *Repo) ListByUser(ctx context.Context, userID uint64) ([]Preference, error) {
	var prefs []Preference
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *Repo) ListBySession(ctx context.Context, userID uint64, sessionID string) ([]Preference, error) {
	var prefs []Preference
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("id DESC").
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	return prefs, nil
}
