package domain

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// TaskService implements task CRUD. Create and moves do not look the target
// status up first: a dangling BoardStatusID surfaces from the store as
// ErrRelatedRecordMissing.
type TaskService struct {
	st    TaskStore
	now   func() time.Time
	newID func() string
}

func NewTaskService(st TaskStore) TaskService {
	return TaskService{st: st, now: time.Now, newID: defaultIDs()}
}

// List returns tasks ordered by position, optionally restricted to one status.
func (s TaskService) List(ctx context.Context, boardStatusID string) ([]TaskWithSubTasks, error) {
	out, err := s.st.ListTasks(ctx, boardStatusID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []TaskWithSubTasks{}
	}
	return out, nil
}

func (s TaskService) Get(ctx context.Context, id string) (*TaskWithSubTasks, error) {
	t, err := s.st.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound(ResourceTask)
	}
	return t, nil
}

func (s TaskService) Create(ctx context.Context, in CreateTaskInput) (*Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ts := stamp(s.now)
	t := Task{
		ID:            s.newID(),
		BoardStatusID: CanonicalID(in.BoardStatusID),
		Title:         in.Title,
		Description:   in.Description,
		Position:      in.Position,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if err := s.st.InsertTask(ctx, t); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task": t.ID, "status": t.BoardStatusID}).Debug("task created")
	return &t, nil
}

func (s TaskService) Update(ctx context.Context, id string, in UpdateTaskInput) (*Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.BoardStatusID != nil {
		statusID := CanonicalID(*in.BoardStatusID)
		in.BoardStatusID = &statusID
	}
	existing, err := s.st.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFound(ResourceTask)
	}
	t, err := s.st.UpdateTask(ctx, id, in, stamp(s.now))
	if err != nil {
		return nil, err
	}
	if in.BoardStatusID != nil && *in.BoardStatusID != existing.BoardStatusID {
		log.WithFields(log.Fields{"task": id, "from": existing.BoardStatusID, "to": t.BoardStatusID}).Debug("task moved")
	}
	return t, nil
}

// Delete removes the task and its subtasks.
func (s TaskService) Delete(ctx context.Context, id string) error {
	existing, err := s.st.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return notFound(ResourceTask)
	}
	return s.st.DeleteTask(ctx, id)
}
