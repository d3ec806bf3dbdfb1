package domain

import "time"

// Task is a work item inside a status. BoardStatusID may be reassigned to
// move the task to another column, including one on a different board.
type Task struct {
	ID            string    `json:"id"`
	BoardStatusID string    `json:"boardStatusId"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SubTask is a checklist item of a task.
type SubTask struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskWithSubTasks is a task with its subtasks in insertion order.
type TaskWithSubTasks struct {
	Task
	SubTasks []SubTask `json:"subTasks"`
}
