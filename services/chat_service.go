package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/model"
)

// ChatService stores per-course conversation transcripts. Rows are
// append-only; history is only removed by the course-delete cascade.
type ChatService struct {
	store *database.Store
}

// NewChatService creates a new chat transcript service
func NewChatService(store *database.Store) *ChatService {
	return &ChatService{store: store}
}

// SaveChatMessage appends one timestamped row to the course transcript
func (s *ChatService) SaveChatMessage(ctx context.Context, courseID, userID string, sender model.ChatSender, message string) error {
	if courseID == "" || userID == "" {
		return fmt.Errorf("%w: course and user ids are required", ErrInvalidArgument)
	}
	if !sender.Valid() {
		return fmt.Errorf("%w: sender must be %q or %q", ErrInvalidArgument, model.ChatSenderUser, model.ChatSenderAI)
	}
	if message == "" {
		return fmt.Errorf("%w: message text is required", ErrInvalidArgument)
	}

	db, err := s.store.DB()
	if err != nil {
		return err
	}

	row := model.ChatMessage{
		CourseID:  courseID,
		UserID:    userID,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// GetChatHistory returns the full transcript in ascending timestamp order,
// reduced to sender and text. No pagination: callers always get the whole
// conversation. Engine faults degrade to an empty slice with a log line.
func (s *ChatService) GetChatHistory(ctx context.Context, courseID, userID string) ([]model.ChatEntry, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	var rows []model.ChatMessage
	if err := db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error; err != nil {
		log.Println("Failed to fetch chat history:", err)
		return []model.ChatEntry{}, nil
	}

	entries := make([]model.ChatEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.ChatEntry{Sender: row.Sender, Text: row.Message})
	}
	return entries, nil
}
