package domain

import "time"

// Board is the root of the hierarchy. Deleting it removes every status,
// task and subtask beneath it.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BoardStatus is a column within a board, displayed in Position order.
type BoardStatus struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"boardId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StatusWithTasks is a status together with its ordered tasks.
type StatusWithTasks struct {
	BoardStatus
	Tasks []TaskWithSubTasks `json:"tasks"`
}

// BoardDetail is the full board tree returned by a single-board lookup.
type BoardDetail struct {
	Board
	Statuses []StatusWithTasks `json:"statuses"`
}
