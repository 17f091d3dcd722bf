package services

import "github.com/studyforge/study-assistant/model"

// CourseSaved is emitted after a course row is durably written. It carries
// just enough of the document for listeners to derive their own state.
type CourseSaved struct {
	ID      string
	Title   string
	Modules []model.Module
}

// CourseSavedListener receives save events. Listeners must be idempotent:
// re-saving a course re-emits the event with the same id.
type CourseSavedListener interface {
	OnCourseSaved(event CourseSaved) error
}
