package domain

import (
	"context"
	"time"
)

// Get methods return (nil, nil) when the row does not exist. Update and
// Delete methods return a *NotFoundError when the row vanished between the
// existence check and the write.

// BoardStore persists boards. DeleteBoard removes the whole subtree in one unit of work.
type BoardStore interface {
	ListBoards(ctx context.Context) ([]Board, error)
	GetBoard(ctx context.Context, id string) (*Board, error)
	GetBoardDetail(ctx context.Context, id string) (*BoardDetail, error)
	InsertBoard(ctx context.Context, b Board) error
	UpdateBoard(ctx context.Context, id string, in UpdateBoardInput, updatedAt time.Time) (*Board, error)
	DeleteBoard(ctx context.Context, id string) error
}

// StatusStore persists board statuses. GetBoard backs the parent check.
type StatusStore interface {
	GetBoard(ctx context.Context, id string) (*Board, error)
	ListStatuses(ctx context.Context, boardID string) ([]BoardStatus, error)
	GetStatus(ctx context.Context, id string) (*BoardStatus, error)
	InsertStatus(ctx context.Context, st BoardStatus) error
	UpdateStatus(ctx context.Context, id string, in UpdateStatusInput, updatedAt time.Time) (*BoardStatus, error)
	DeleteStatus(ctx context.Context, id string) error
}

// TaskStore persists tasks. An empty boardStatusID lists every task.
type TaskStore interface {
	ListTasks(ctx context.Context, boardStatusID string) ([]TaskWithSubTasks, error)
	GetTask(ctx context.Context, id string) (*TaskWithSubTasks, error)
	InsertTask(ctx context.Context, t Task) error
	UpdateTask(ctx context.Context, id string, in UpdateTaskInput, updatedAt time.Time) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// SubTaskStore persists subtasks. An empty taskID lists every subtask.
type SubTaskStore interface {
	ListSubTasks(ctx context.Context, taskID string) ([]SubTask, error)
	GetSubTask(ctx context.Context, id string) (*SubTask, error)
	InsertSubTask(ctx context.Context, st SubTask) error
	UpdateSubTask(ctx context.Context, id string, in UpdateSubTaskInput, updatedAt time.Time) (*SubTask, error)
	DeleteSubTask(ctx context.Context, id string) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	BoardStore
	StatusStore
	TaskStore
	SubTaskStore
}
