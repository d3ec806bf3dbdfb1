package domain

import (
	"context"
	"time"
)

// SubTaskService implements subtask CRUD. Like tasks, creation relies on the
// store's foreign key to reject an unknown TaskID.
type SubTaskService struct {
	st    SubTaskStore
	now   func() time.Time
	newID func() string
}

func NewSubTaskService(st SubTaskStore) SubTaskService {
	return SubTaskService{st: st, now: time.Now, newID: defaultIDs()}
}

// List returns subtasks in creation order, optionally for one task.
func (s SubTaskService) List(ctx context.Context, taskID string) ([]SubTask, error) {
	out, err := s.st.ListSubTasks(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []SubTask{}
	}
	return out, nil
}

func (s SubTaskService) Get(ctx context.Context, id string) (*SubTask, error) {
	st, err := s.st.GetSubTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound(ResourceSubTask)
	}
	return st, nil
}

func (s SubTaskService) Create(ctx context.Context, in CreateSubTaskInput) (*SubTask, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ts := stamp(s.now)
	st := SubTask{
		ID:          s.newID(),
		TaskID:      CanonicalID(in.TaskID),
		Description: in.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if in.IsCompleted != nil {
		st.IsCompleted = *in.IsCompleted
	}
	if err := s.st.InsertSubTask(ctx, st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s SubTaskService) Update(ctx context.Context, id string, in UpdateSubTaskInput) (*SubTask, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.st.UpdateSubTask(ctx, id, in, stamp(s.now))
}

func (s SubTaskService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.st.DeleteSubTask(ctx, id)
}
