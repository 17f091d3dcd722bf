package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// SectionRef identifies a single section by position inside its course
type SectionRef struct {
	ModuleIndex  int `json:"moduleIndex"`
	SectionIndex int `json:"sectionIndex"`
}

// SectionRefs is stored as a JSON array in the progress row
type SectionRefs []SectionRef

// Contains reports whether the given pair is already recorded
func (s SectionRefs) Contains(moduleIndex, sectionIndex int) bool {
	for _, ref := range s {
		if ref.ModuleIndex == moduleIndex && ref.SectionIndex == sectionIndex {
			return true
		}
	}
	return false
}

// Scan implements the sql.Scanner interface for reading from database
func (s *SectionRefs) Scan(value interface{}) error {
	if value == nil {
		*s = SectionRefs{}
		return nil
	}
	bytes, err := jsonColumnBytes(value)
	if err != nil {
		return errors.New("failed to unmarshal completed sections value")
	}
	if len(bytes) == 0 {
		*s = SectionRefs{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Value implements the driver.Valuer interface for writing to database
func (s SectionRefs) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// IntList is stored as a JSON array of module indexes
type IntList []int

// Contains reports whether n is already recorded
func (l IntList) Contains(n int) bool {
	for _, v := range l {
		if v == n {
			return true
		}
	}
	return false
}

// Scan implements the sql.Scanner interface for reading from database
func (l *IntList) Scan(value interface{}) error {
	if value == nil {
		*l = IntList{}
		return nil
	}
	bytes, err := jsonColumnBytes(value)
	if err != nil {
		return errors.New("failed to unmarshal completed modules value")
	}
	if len(bytes) == 0 {
		*l = IntList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for writing to database
func (l IntList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// sqlite hands TEXT columns back as string, other drivers as []byte
func jsonColumnBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type")
	}
}

// CourseProgress tracks per-user completion for one course. One row per
// (course_id, user_id) pair; progress_percentage is always recomputed from
// completed_sections, never edited independently.
type CourseProgress struct {
	ID                 uint        `gorm:"primaryKey;autoIncrement" json:"-"`
	CourseID           string      `gorm:"not null;uniqueIndex:idx_course_user" json:"courseId"`
	UserID             string      `gorm:"not null;uniqueIndex:idx_course_user" json:"userId"`
	CompletedModules   IntList     `gorm:"type:text" json:"completedModules"`
	CompletedSections  SectionRefs `gorm:"type:text" json:"completedSections"`
	LastAccessedAt     int64       `gorm:"not null" json:"lastAccessedAt"` // unix milliseconds
	ProgressPercentage float64     `gorm:"default:0" json:"progressPercentage"`
}

// TableName specifies the table name for CourseProgress
func (CourseProgress) TableName() string {
	return "course_progress"
}
