package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskly-api/domain"
)

const subTaskColumns = "id, task_id, description, is_completed, created_at, updated_at"

func scanSubTask(sc scanner) (domain.SubTask, error) {
	var (
		st               domain.SubTask
		created, updated string
	)
	if err := sc.Scan(&st.ID, &st.TaskID, &st.Description, &st.IsCompleted, &created, &updated); err != nil {
		return domain.SubTask{}, err
	}
	var err error
	if st.CreatedAt, err = parseTime(created); err != nil {
		return domain.SubTask{}, err
	}
	if st.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.SubTask{}, err
	}
	return st, nil
}

func querySubTasks(ctx context.Context, q queryer, query string, args ...any) ([]domain.SubTask, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list subtasks", err)
	}
	defer rows.Close()

	subs := []domain.SubTask{}
	for rows.Next() {
		st, err := scanSubTask(rows)
		if err != nil {
			return nil, classify("list subtasks", err)
		}
		subs = append(subs, st)
	}
	return subs, classify("list subtasks", rows.Err())
}

// ListSubTasks returns subtasks oldest first, optionally for one task.
func (s *Storage) ListSubTasks(ctx context.Context, taskID string) ([]domain.SubTask, error) {
	if taskID == "" {
		return querySubTasks(ctx, s.db, `
			SELECT `+subTaskColumns+` FROM sub_tasks
			ORDER BY created_at ASC, rowid ASC
		`)
	}
	return querySubTasks(ctx, s.db, `
		SELECT `+subTaskColumns+` FROM sub_tasks WHERE task_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, taskID)
}

func (s *Storage) GetSubTask(ctx context.Context, id string) (*domain.SubTask, error) {
	st, err := scanSubTask(s.db.QueryRowContext(ctx, `
		SELECT `+subTaskColumns+` FROM sub_tasks WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get subtask", err)
	}
	return &st, nil
}

func (s *Storage) InsertSubTask(ctx context.Context, st domain.SubTask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sub_tasks (`+subTaskColumns+`) VALUES (?, ?, ?, ?, ?, ?)
	`, st.ID, st.TaskID, st.Description, st.IsCompleted,
		formatTime(st.CreatedAt), formatTime(st.UpdatedAt))
	return classify("insert subtask", err)
}

func (s *Storage) UpdateSubTask(ctx context.Context, id string, in domain.UpdateSubTaskInput, updatedAt time.Time) (*domain.SubTask, error) {
	var a assignments
	if in.Description != nil {
		a.set("description", *in.Description)
	}
	if in.IsCompleted != nil {
		a.set("is_completed", *in.IsCompleted)
	}
	a.set("updated_at", formatTime(updatedAt))

	st, err := scanSubTask(s.db.QueryRowContext(ctx, `
		UPDATE sub_tasks SET `+a.clause()+` WHERE id = ?
		RETURNING `+subTaskColumns,
		append(a.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: domain.ResourceSubTask}
	}
	if err != nil {
		return nil, classify("update subtask", err)
	}
	return &st, nil
}

func (s *Storage) DeleteSubTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "delete subtask", "sub_tasks", id, domain.ResourceSubTask)
}
