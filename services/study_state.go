package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/utils/blob"
)

const (
	tasksBlobKey    = "ai-study-tasks"
	subjectsBlobKey = "ai-study-subjects"
	goalsBlobKey    = "ai-study-goals"
)

// StudyStateService keeps the user-curated task/subject/goal lists on a
// key-value blob store, separate from the relational course tier. The lists
// live in memory behind a mutex and are rewritten to the store after every
// mutation.
type StudyStateService struct {
	blobs blob.Store

	mu       sync.Mutex
	tasks    []model.Task
	subjects []model.Subject
	goals    []model.Goal
}

// NewStudyStateService loads existing lists from the blob store; missing
// keys start as empty lists.
func NewStudyStateService(blobs blob.Store) (*StudyStateService, error) {
	s := &StudyStateService{blobs: blobs}
	if err := loadList(blobs, tasksBlobKey, &s.tasks); err != nil {
		return nil, err
	}
	if err := loadList(blobs, subjectsBlobKey, &s.subjects); err != nil {
		return nil, err
	}
	if err := loadList(blobs, goalsBlobKey, &s.goals); err != nil {
		return nil, err
	}
	return s, nil
}

func loadList(blobs blob.Store, key string, dest interface{}) error {
	data, err := blobs.Get(key)
	if err == blob.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *StudyStateService) persist(key string, list interface{}) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.blobs.Put(key, data)
}

func newStudyID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

// ==================== TASKS ====================

// Tasks returns a copy of the current task list
func (s *StudyStateService) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// AddTask appends a new task with a generated time-based id
func (s *StudyStateService) AddTask(text, dueDate string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := model.Task{ID: newStudyID(), Text: text, Completed: false, DueDate: dueDate}
	s.tasks = append(s.tasks, task)
	if err := s.persist(tasksBlobKey, s.tasks); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the task with the same id
func (s *StudyStateService) UpdateTask(task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			previous := s.tasks[i]
			s.tasks[i] = task
			if err := s.persist(tasksBlobKey, s.tasks); err != nil {
				s.tasks[i] = previous
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", ErrItemNotFound, task.ID)
}

// DeleteTask removes the task with the given id
func (s *StudyStateService) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			updated := append(append([]model.Task{}, s.tasks[:i]...), s.tasks[i+1:]...)
			if err := s.persist(tasksBlobKey, updated); err != nil {
				return err
			}
			s.tasks = updated
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", ErrItemNotFound, id)
}

// ==================== SUBJECTS ====================

// Subjects returns a copy of the current subject list
func (s *StudyStateService) Subjects() []model.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Subject, len(s.subjects))
	copy(out, s.subjects)
	return out
}

// AddSubject appends a new subject with progress 0
func (s *StudyStateService) AddSubject(name string) (model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject := model.Subject{ID: newStudyID(), Name: name, Progress: 0}
	s.subjects = append(s.subjects, subject)
	if err := s.persist(subjectsBlobKey, s.subjects); err != nil {
		s.subjects = s.subjects[:len(s.subjects)-1]
		return model.Subject{}, err
	}
	return subject, nil
}

// UpdateSubject replaces the subject with the same id
func (s *StudyStateService) UpdateSubject(subject model.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subjects {
		if s.subjects[i].ID == subject.ID {
			previous := s.subjects[i]
			s.subjects[i] = subject
			if err := s.persist(subjectsBlobKey, s.subjects); err != nil {
				s.subjects[i] = previous
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: subject %s", ErrItemNotFound, subject.ID)
}

// DeleteSubject removes the subject with the given id
func (s *StudyStateService) DeleteSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subjects {
		if s.subjects[i].ID == id {
			updated := append(append([]model.Subject{}, s.subjects[:i]...), s.subjects[i+1:]...)
			if err := s.persist(subjectsBlobKey, updated); err != nil {
				return err
			}
			s.subjects = updated
			return nil
		}
	}
	return fmt.Errorf("%w: subject %s", ErrItemNotFound, id)
}

// ==================== GOALS ====================

// Goals returns a copy of the current goal list
func (s *StudyStateService) Goals() []model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Goal, len(s.goals))
	copy(out, s.goals)
	return out
}

// AddGoal appends a new goal
func (s *StudyStateService) AddGoal(text string) (model.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal := model.Goal{ID: newStudyID(), Text: text, Achieved: false}
	s.goals = append(s.goals, goal)
	if err := s.persist(goalsBlobKey, s.goals); err != nil {
		s.goals = s.goals[:len(s.goals)-1]
		return model.Goal{}, err
	}
	return goal, nil
}

// UpdateGoal replaces the goal with the same id
func (s *StudyStateService) UpdateGoal(goal model.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == goal.ID {
			previous := s.goals[i]
			s.goals[i] = goal
			if err := s.persist(goalsBlobKey, s.goals); err != nil {
				s.goals[i] = previous
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("%w: goal %s", ErrItemNotFound, goal.ID)
}

// DeleteGoal removes the goal with the given id
func (s *StudyStateService) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.goals {
		if s.goals[i].ID == id {
			updated := append(append([]model.Goal{}, s.goals[:i]...), s.goals[i+1:]...)
			if err := s.persist(goalsBlobKey, updated); err != nil {
				return err
			}
			s.goals = updated
			return nil
		}
	}
	return fmt.Errorf("%w: goal %s", ErrItemNotFound, id)
}

// ==================== COURSE SAVE SIDE EFFECTS ====================

// OnCourseSaved derives a subject and one task per module from a freshly
// saved course. Ids are deterministic (`subj-<courseID>`,
// `task-<courseID>-<i>`), so re-saving the same course creates nothing new.
func (s *StudyStateService) OnCourseSaved(event CourseSaved) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjectID := "subj-" + event.ID
	if !s.hasSubject(subjectID) {
		s.subjects = append(s.subjects, model.Subject{
			ID:       subjectID,
			Name:     event.Title,
			Progress: 0,
		})
		if err := s.persist(subjectsBlobKey, s.subjects); err != nil {
			s.subjects = s.subjects[:len(s.subjects)-1]
			return err
		}
	}

	added := 0
	today := time.Now()
	for i, mod := range event.Modules {
		taskID := fmt.Sprintf("task-%s-%d", event.ID, i)
		if s.hasTask(taskID) {
			continue
		}
		s.tasks = append(s.tasks, model.Task{
			ID:        taskID,
			Text:      fmt.Sprintf("Study Module %d: %s", i+1, mod.ModuleTitle),
			Completed: false,
			// Due dates stagger one day per module, starting tomorrow.
			DueDate: today.AddDate(0, 0, i+1).Format("2006-01-02"),
		})
		added++
	}
	if added > 0 {
		if err := s.persist(tasksBlobKey, s.tasks); err != nil {
			s.tasks = s.tasks[:len(s.tasks)-added]
			return err
		}
	}

	return nil
}

func (s *StudyStateService) hasSubject(id string) bool {
	for _, subject := range s.subjects {
		if subject.ID == id {
			return true
		}
	}
	return false
}

func (s *StudyStateService) hasTask(id string) bool {
	for _, task := range s.tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}
