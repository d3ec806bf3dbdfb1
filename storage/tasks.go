package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskly-api/domain"
)

const taskColumns = "id, board_status_id, title, description, position, created_at, updated_at"

func scanTask(sc scanner) (domain.Task, error) {
	var (
		t                domain.Task
		desc             sql.NullString
		created, updated string
	)
	if err := sc.Scan(&t.ID, &t.BoardStatusID, &t.Title, &desc, &t.Position, &created, &updated); err != nil {
		return domain.Task{}, err
	}
	t.Description = stringPtr(desc)
	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return domain.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func queryTasks(ctx context.Context, q queryer, query string, args ...any) ([]domain.Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, classify("list tasks", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, classify("list tasks", rows.Err())
}

// attachSubTasks pairs every task with its subtasks, preserving the order of
// both inputs.
func attachSubTasks(tasks []domain.Task, subs []domain.SubTask) []domain.TaskWithSubTasks {
	byTask := make(map[string][]domain.SubTask, len(tasks))
	for _, st := range subs {
		byTask[st.TaskID] = append(byTask[st.TaskID], st)
	}
	out := make([]domain.TaskWithSubTasks, 0, len(tasks))
	for _, t := range tasks {
		children := byTask[t.ID]
		if children == nil {
			children = []domain.SubTask{}
		}
		out = append(out, domain.TaskWithSubTasks{Task: t, SubTasks: children})
	}
	return out
}

// ListTasks returns tasks with their subtasks, optionally restricted to one status.
func (s *Storage) ListTasks(ctx context.Context, boardStatusID string) ([]domain.TaskWithSubTasks, error) {
	tx, err := s.readTx(ctx)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		tasks []domain.Task
		subs  []domain.SubTask
	)
	if boardStatusID == "" {
		tasks, err = queryTasks(ctx, tx, `
			SELECT `+taskColumns+` FROM tasks
			ORDER BY position ASC, created_at ASC, rowid ASC
		`)
		if err == nil {
			subs, err = querySubTasks(ctx, tx, `
				SELECT `+subTaskColumns+` FROM sub_tasks
				ORDER BY created_at ASC, rowid ASC
			`)
		}
	} else {
		tasks, err = queryTasks(ctx, tx, `
			SELECT `+taskColumns+` FROM tasks WHERE board_status_id = ?
			ORDER BY position ASC, created_at ASC, rowid ASC
		`, boardStatusID)
		if err == nil {
			subs, err = querySubTasks(ctx, tx, `
				SELECT `+prefixed("st", subTaskColumns)+`
				FROM sub_tasks st JOIN tasks t ON t.id = st.task_id
				WHERE t.board_status_id = ?
				ORDER BY st.created_at ASC, st.rowid ASC
			`, boardStatusID)
		}
	}
	if err != nil {
		return nil, err
	}
	return attachSubTasks(tasks, subs), nil
}

// GetTask retrieves a task together with its subtasks.
func (s *Storage) GetTask(ctx context.Context, id string) (*domain.TaskWithSubTasks, error) {
	tx, err := s.readTx(ctx)
	if err != nil {
		return nil, classify("get task", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTask(tx.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get task", err)
	}
	subs, err := querySubTasks(ctx, tx, `
		SELECT `+subTaskColumns+` FROM sub_tasks WHERE task_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, id)
	if err != nil {
		return nil, err
	}
	out := attachSubTasks([]domain.Task{t}, subs)[0]
	return &out, nil
}

func (s *Storage) InsertTask(ctx context.Context, t domain.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.BoardStatusID, t.Title, nullString(t.Description), t.Position,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	return classify("insert task", err)
}

// UpdateTask applies the supplied fields. Changing board_status_id moves the
// task; its subtasks follow because they reference the task only.
func (s *Storage) UpdateTask(ctx context.Context, id string, in domain.UpdateTaskInput, updatedAt time.Time) (*domain.Task, error) {
	var a assignments
	if in.BoardStatusID != nil {
		a.set("board_status_id", *in.BoardStatusID)
	}
	if in.Title != nil {
		a.set("title", *in.Title)
	}
	if in.Description.Set {
		a.set("description", nullString(in.Description.Ptr()))
	}
	if in.Position != nil {
		a.set("position", *in.Position)
	}
	a.set("updated_at", formatTime(updatedAt))

	t, err := scanTask(s.db.QueryRowContext(ctx, `
		UPDATE tasks SET `+a.clause()+` WHERE id = ?
		RETURNING `+taskColumns,
		append(a.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: domain.ResourceTask}
	}
	if err != nil {
		return nil, classify("update task", err)
	}
	return &t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "delete task", "tasks", id, domain.ResourceTask)
}
