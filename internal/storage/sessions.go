package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/branchd-dev/storefront/internal/models"
	"github.com/branchd-dev/storefront/internal/session"
)

// SessionStore persists a session as key/value rows for one backend profile
type SessionStore struct {
	db      *gorm.DB
	profile string
}

// NewSessionStore returns a sqlite-backed session persistence
func NewSessionStore(db *gorm.DB, profile string) *SessionStore {
	return &SessionStore{db: db, profile: profile}
}

func (s *SessionStore) Read(ctx context.Context) (session.Snapshot, error) {
	var entries []models.SessionEntry
	if err := s.db.WithContext(ctx).
		Where("profile = ?", s.profile).
		Find(&entries).Error; err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to read session: %w", err)
	}

	var snap session.Snapshot
	for _, e := range entries {
		switch e.Key {
		case session.KeyUser:
			snap.User = e.Value
		case session.KeyToken:
			snap.Token = e.Value
		}
	}
	return snap, nil
}

func (s *SessionStore) Write(ctx context.Context, snap session.Snapshot) error {
	entries := []models.SessionEntry{
		{Profile: s.profile, Key: session.KeyUser, Value: snap.User},
		{Profile: s.profile, Key: session.KeyToken, Value: snap.Token},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "profile"}, {Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("profile = ? AND entry_key IN ?", s.profile, []string{session.KeyUser, session.KeyToken}).
		Delete(&models.SessionEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
