package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/studyforge/study-assistant/model"
	"gorm.io/gorm"
)

// EnsureDefaultUser creates the local profile on first launch. If any user
// row already exists it is returned unchanged, so repeated startups never
// create duplicates.
func (s *Store) EnsureDefaultUser(ctx context.Context, name, email string) (*model.User, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var existing model.User
	result := db.WithContext(ctx).Order("created_at ASC").Limit(1).Find(&existing)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up user: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return &existing, nil
	}

	user := model.User{
		ID:        "user_" + uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create default user: %w", err)
	}

	log.Println("Created default user:", user.ID)
	return &user, nil
}

// GetCurrentUser returns the single local profile, or nil before first
// launch seeding has run.
func (s *Store) GetCurrentUser(ctx context.Context) (*model.User, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var user model.User
	result := db.WithContext(ctx).Order("created_at ASC").Limit(1).Find(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

// GetUserByID returns the user or nil when no row matches
func (s *Store) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var user model.User
	result := db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to look up user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}

// DeleteUserData removes the user row and everything keyed by the user id
func (s *Store) DeleteUserData(ctx context.Context, userID string) error {
	db, err := s.DB()
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete chat history: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.CourseProgress{}).Error; err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Course{}).Error; err != nil {
			return fmt.Errorf("failed to delete courses: %w", err)
		}
		if err := tx.Where("id = ?", userID).Delete(&model.User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
