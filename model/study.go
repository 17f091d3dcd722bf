package model

// Task is an ad hoc to-do item. Tasks are added manually or auto-generated
// (one per module) when a course is saved.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"dueDate"` // YYYY-MM-DD
}

// Subject is a tracked study subject with a manually adjustable progress bar
type Subject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"` // 0..100
}

// Goal is a long-term study goal
type Goal struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Achieved bool   `json:"achieved"`
}
