package domain

import (
	"context"
	"sort"
	"time"
)

// fakeStore is an in-memory Store with the same cascade and foreign key
// behaviour as the SQL schema.
type fakeStore struct {
	boards   map[string]Board
	statuses map[string]BoardStatus
	tasks    map[string]Task
	subtasks map[string]SubTask
	seq      map[string]int
	next     int

	deletes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		boards:   map[string]Board{},
		statuses: map[string]BoardStatus{},
		tasks:    map[string]Task{},
		subtasks: map[string]SubTask{},
		seq:      map[string]int{},
	}
}

func (f *fakeStore) order(id string) {
	f.next++
	f.seq[id] = f.next
}

func (f *fakeStore) ListBoards(ctx context.Context) ([]Board, error) {
	var out []Board
	for _, b := range f.boards {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return f.seq[out[i].ID] > f.seq[out[j].ID] })
	return out, nil
}

func (f *fakeStore) GetBoard(ctx context.Context, id string) (*Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeStore) GetBoardDetail(ctx context.Context, id string) (*BoardDetail, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, nil
	}
	d := &BoardDetail{Board: b, Statuses: []StatusWithTasks{}}
	sts, _ := f.ListStatuses(ctx, id)
	for _, st := range sts {
		tasks, _ := f.ListTasks(ctx, st.ID)
		d.Statuses = append(d.Statuses, StatusWithTasks{BoardStatus: st, Tasks: tasks})
	}
	return d, nil
}

func (f *fakeStore) InsertBoard(ctx context.Context, b Board) error {
	if _, ok := f.boards[b.ID]; ok {
		return ErrConflict
	}
	f.boards[b.ID] = b
	f.order(b.ID)
	return nil
}

func (f *fakeStore) UpdateBoard(ctx context.Context, id string, in UpdateBoardInput, updatedAt time.Time) (*Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, &NotFoundError{Resource: ResourceBoard}
	}
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Description.Set {
		b.Description = in.Description.Ptr()
	}
	b.UpdatedAt = updatedAt
	f.boards[id] = b
	return &b, nil
}

func (f *fakeStore) DeleteBoard(ctx context.Context, id string) error {
	if _, ok := f.boards[id]; !ok {
		return &NotFoundError{Resource: ResourceBoard}
	}
	for sid, st := range f.statuses {
		if st.BoardID == id {
			_ = f.DeleteStatus(ctx, sid)
		}
	}
	delete(f.boards, id)
	f.deletes = append(f.deletes, "board:"+id)
	return nil
}

func (f *fakeStore) ListStatuses(ctx context.Context, boardID string) ([]BoardStatus, error) {
	var out []BoardStatus
	for _, st := range f.statuses {
		if st.BoardID == boardID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return f.seq[out[i].ID] < f.seq[out[j].ID]
	})
	return out, nil
}

func (f *fakeStore) GetStatus(ctx context.Context, id string) (*BoardStatus, error) {
	st, ok := f.statuses[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeStore) InsertStatus(ctx context.Context, st BoardStatus) error {
	if _, ok := f.boards[st.BoardID]; !ok {
		return ErrRelatedRecordMissing
	}
	f.statuses[st.ID] = st
	f.order(st.ID)
	return nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput, updatedAt time.Time) (*BoardStatus, error) {
	st, ok := f.statuses[id]
	if !ok {
		return nil, &NotFoundError{Resource: ResourceStatus}
	}
	if in.Name != nil {
		st.Name = *in.Name
	}
	if in.Description.Set {
		st.Description = in.Description.Ptr()
	}
	if in.Position != nil {
		st.Position = *in.Position
	}
	st.UpdatedAt = updatedAt
	f.statuses[id] = st
	return &st, nil
}

func (f *fakeStore) DeleteStatus(ctx context.Context, id string) error {
	if _, ok := f.statuses[id]; !ok {
		return &NotFoundError{Resource: ResourceStatus}
	}
	for tid, t := range f.tasks {
		if t.BoardStatusID == id {
			_ = f.DeleteTask(ctx, tid)
		}
	}
	delete(f.statuses, id)
	f.deletes = append(f.deletes, "status:"+id)
	return nil
}

func (f *fakeStore) ListTasks(ctx context.Context, boardStatusID string) ([]TaskWithSubTasks, error) {
	var tasks []Task
	for _, t := range f.tasks {
		if boardStatusID == "" || t.BoardStatusID == boardStatusID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return f.seq[tasks[i].ID] < f.seq[tasks[j].ID]
	})
	out := make([]TaskWithSubTasks, 0, len(tasks))
	for _, t := range tasks {
		subs, _ := f.ListSubTasks(ctx, t.ID)
		if subs == nil {
			subs = []SubTask{}
		}
		out = append(out, TaskWithSubTasks{Task: t, SubTasks: subs})
	}
	return out, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id string) (*TaskWithSubTasks, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	subs, _ := f.ListSubTasks(ctx, id)
	if subs == nil {
		subs = []SubTask{}
	}
	return &TaskWithSubTasks{Task: t, SubTasks: subs}, nil
}

func (f *fakeStore) InsertTask(ctx context.Context, t Task) error {
	if _, ok := f.statuses[t.BoardStatusID]; !ok {
		return ErrRelatedRecordMissing
	}
	f.tasks[t.ID] = t
	f.order(t.ID)
	return nil
}

func (f *fakeStore) UpdateTask(ctx context.Context, id string, in UpdateTaskInput, updatedAt time.Time) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, &NotFoundError{Resource: ResourceTask}
	}
	if in.BoardStatusID != nil {
		if _, ok := f.statuses[*in.BoardStatusID]; !ok {
			return nil, ErrRelatedRecordMissing
		}
		t.BoardStatusID = *in.BoardStatusID
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description.Set {
		t.Description = in.Description.Ptr()
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	t.UpdatedAt = updatedAt
	f.tasks[id] = t
	return &t, nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) error {
	if _, ok := f.tasks[id]; !ok {
		return &NotFoundError{Resource: ResourceTask}
	}
	for sid, st := range f.subtasks {
		if st.TaskID == id {
			delete(f.subtasks, sid)
		}
	}
	delete(f.tasks, id)
	f.deletes = append(f.deletes, "task:"+id)
	return nil
}

func (f *fakeStore) ListSubTasks(ctx context.Context, taskID string) ([]SubTask, error) {
	var out []SubTask
	for _, st := range f.subtasks {
		if taskID == "" || st.TaskID == taskID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.seq[out[i].ID] < f.seq[out[j].ID] })
	return out, nil
}

func (f *fakeStore) GetSubTask(ctx context.Context, id string) (*SubTask, error) {
	st, ok := f.subtasks[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (f *fakeStore) InsertSubTask(ctx context.Context, st SubTask) error {
	if _, ok := f.tasks[st.TaskID]; !ok {
		return ErrRelatedRecordMissing
	}
	f.subtasks[st.ID] = st
	f.order(st.ID)
	return nil
}

func (f *fakeStore) UpdateSubTask(ctx context.Context, id string, in UpdateSubTaskInput, updatedAt time.Time) (*SubTask, error) {
	st, ok := f.subtasks[id]
	if !ok {
		return nil, &NotFoundError{Resource: ResourceSubTask}
	}
	if in.Description != nil {
		st.Description = *in.Description
	}
	if in.IsCompleted != nil {
		st.IsCompleted = *in.IsCompleted
	}
	st.UpdatedAt = updatedAt
	f.subtasks[id] = st
	return &st, nil
}

func (f *fakeStore) DeleteSubTask(ctx context.Context, id string) error {
	if _, ok := f.subtasks[id]; !ok {
		return &NotFoundError{Resource: ResourceSubTask}
	}
	delete(f.subtasks, id)
	return nil
}
