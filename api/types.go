package api

import (
	"context"

	"taskly-api/domain"
)

// BoardService is the board surface used by the handlers.
type BoardService interface {
	List(ctx context.Context) ([]domain.Board, error)
	Get(ctx context.Context, id string) (*domain.BoardDetail, error)
	Create(ctx context.Context, in domain.CreateBoardInput) (*domain.Board, error)
	Update(ctx context.Context, id string, in domain.UpdateBoardInput) (*domain.Board, error)
	Delete(ctx context.Context, id string) error
}

// StatusService addresses statuses through their owning board.
type StatusService interface {
	List(ctx context.Context, boardID string) ([]domain.BoardStatus, error)
	Get(ctx context.Context, boardID, statusID string) (*domain.BoardStatus, error)
	Create(ctx context.Context, boardID string, in domain.CreateStatusInput) (*domain.BoardStatus, error)
	Update(ctx context.Context, boardID, statusID string, in domain.UpdateStatusInput) (*domain.BoardStatus, error)
	Delete(ctx context.Context, boardID, statusID string) error
}

type TaskService interface {
	List(ctx context.Context, boardStatusID string) ([]domain.TaskWithSubTasks, error)
	Get(ctx context.Context, id string) (*domain.TaskWithSubTasks, error)
	Create(ctx context.Context, in domain.CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, in domain.UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type SubTaskService interface {
	List(ctx context.Context, taskID string) ([]domain.SubTask, error)
	Get(ctx context.Context, id string) (*domain.SubTask, error)
	Create(ctx context.Context, in domain.CreateSubTaskInput) (*domain.SubTask, error)
	Update(ctx context.Context, id string, in domain.UpdateSubTaskInput) (*domain.SubTask, error)
	Delete(ctx context.Context, id string) error
}

// Services bundles the resource services routed by Register.
type Services struct {
	Boards   BoardService
	Statuses StatusService
	Tasks    TaskService
	SubTasks SubTaskService
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
