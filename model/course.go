package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ResourceType categorizes a learning resource attached to a section
type ResourceType string

const (
	ResourceTypeVideo         ResourceType = "video"
	ResourceTypeArticle       ResourceType = "article"
	ResourceTypeImage         ResourceType = "image"
	ResourceTypeDocumentation ResourceType = "documentation"
)

// Resource is a single learning resource attached to a course section
type Resource struct {
	Type        ResourceType `json:"type"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Description string       `json:"description,omitempty"`
}

// CodeSnippet is an optional code example belonging to a section
type CodeSnippet struct {
	Language    string `json:"language"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Section is one unit of content inside a module. Content is HTML produced
// by the content provider and rendered as-is by the client.
type Section struct {
	Heading     string       `json:"heading"`
	Content     string       `json:"content"`
	CodeSnippet *CodeSnippet `json:"codeSnippet,omitempty"`
	Resources   []Resource   `json:"resources,omitempty"`
}

// Module groups an ordered list of sections. Order matters: it drives task
// due-date staggering and navigation.
type Module struct {
	ModuleTitle string    `json:"moduleTitle"`
	Sections    []Section `json:"sections"`
}

// VideoSuggestion is a suggested YouTube video for the whole course
type VideoSuggestion struct {
	Title   string `json:"title"`
	Query   string `json:"query"`
	VideoID string `json:"videoId,omitempty"`
}

// Reference is a further-reading link for the whole course
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CourseDocument is the full nested course produced by the content provider.
// Modules and sections are immutable once generated; only the progress
// record (stored separately) changes afterwards.
type CourseDocument struct {
	ID               string            `json:"id,omitempty"`
	UserID           string            `json:"userId,omitempty"`
	Title            string            `json:"title"`
	Introduction     string            `json:"introduction"`
	Modules          []Module          `json:"modules"`
	VideoSuggestions []VideoSuggestion `json:"videoSuggestions,omitempty"`
	References       []Reference       `json:"references,omitempty"`
	Timestamp        int64             `json:"timestamp,omitempty"` // unix milliseconds

	// Populated from the progress table on reads, never stored in the blob.
	Progress *CourseProgress `json:"progress,omitempty"`
}

// TotalSections counts sections across all modules
func (d *CourseDocument) TotalSections() int {
	n := 0
	for _, m := range d.Modules {
		n += len(m.Sections)
	}
	return n
}

// Course is the persisted row for a course document. Title, introduction and
// timestamp are denormalized out of the blob so listing and search never
// deserialize full documents.
type Course struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	UserID       string         `gorm:"not null;index" json:"user_id"`
	Title        string         `gorm:"not null" json:"title"`
	Introduction string         `gorm:"type:text" json:"introduction"`
	Timestamp    int64          `gorm:"not null;index" json:"timestamp"`
	Data         datatypes.JSON `gorm:"not null" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// Document deserializes the stored blob back into a CourseDocument
func (c *Course) Document() (*CourseDocument, error) {
	var doc CourseDocument
	if err := json.Unmarshal(c.Data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// NewCourseRow builds the persisted row from a document. The document must
// already carry its id, user id and timestamp. Progress lives in its own
// table and is stripped from the blob.
func NewCourseRow(doc *CourseDocument) (*Course, error) {
	stored := *doc
	stored.Progress = nil
	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, err
	}
	return &Course{
		ID:           doc.ID,
		UserID:       doc.UserID,
		Title:        doc.Title,
		Introduction: doc.Introduction,
		Timestamp:    doc.Timestamp,
		Data:         datatypes.JSON(data),
	}, nil
}
