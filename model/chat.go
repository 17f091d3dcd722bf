package model

// ChatSender identifies who produced a chat message
type ChatSender string

const (
	ChatSenderUser ChatSender = "user"
	ChatSenderAI   ChatSender = "ai"
)

// Valid reports whether the sender is one of the two known values
func (s ChatSender) Valid() bool {
	return s == ChatSenderUser || s == ChatSenderAI
}

// ChatMessage is one append-only row of a per-course conversation. Rows are
// never updated or deleted except by the course-delete cascade.
type ChatMessage struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  string     `gorm:"not null;index" json:"course_id"`
	UserID    string     `gorm:"not null;index" json:"user_id"`
	Sender    ChatSender `gorm:"type:varchar(10);not null" json:"sender"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Timestamp int64      `gorm:"not null;index" json:"timestamp"` // unix milliseconds
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_history"
}

// ChatEntry is the replay shape handed to callers: timestamps stay internal
type ChatEntry struct {
	Sender ChatSender `json:"sender"`
	Text   string     `json:"text"`
}
