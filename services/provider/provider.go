package provider

import (
	"context"
	"errors"

	"github.com/studyforge/study-assistant/model"
)

// ContinueMode selects how ContinueGeneration extends an existing course
type ContinueMode string

const (
	// ContinueNewModules appends 2-3 new modules to the course
	ContinueNewModules ContinueMode = "new-modules"
	// ContinueExpandSections adds 1-2 sections to each existing module
	ContinueExpandSections ContinueMode = "expand-sections"
)

// Valid reports whether the mode is one of the two known values
func (m ContinueMode) Valid() bool {
	return m == ContinueNewModules || m == ContinueExpandSections
}

var (
	// ErrNotConfigured is returned when no API key is available
	ErrNotConfigured = errors.New("content provider not configured")
	// ErrBadResponse is returned when the model output cannot be parsed
	// into a course document
	ErrBadResponse = errors.New("content provider returned an unusable response")
)

// ChatSession is a running course-scoped conversation with the assistant
type ChatSession interface {
	Send(ctx context.Context, message string) (string, error)
}

// Provider generates structured course content. The persistence tier never
// calls it; only the generation and chat endpoints do.
type Provider interface {
	GenerateCourse(ctx context.Context, topic string) (*model.CourseDocument, error)
	ContinueGeneration(ctx context.Context, course *model.CourseDocument, mode ContinueMode) (*model.CourseDocument, error)
	NewChatSession(course *model.CourseDocument) ChatSession
}
