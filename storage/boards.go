package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskly-api/domain"
)

const boardColumns = "id, name, description, created_at, updated_at"

func scanBoard(sc scanner) (domain.Board, error) {
	var (
		b                domain.Board
		desc             sql.NullString
		created, updated string
	)
	if err := sc.Scan(&b.ID, &b.Name, &desc, &created, &updated); err != nil {
		return domain.Board{}, err
	}
	b.Description = stringPtr(desc)
	var err error
	if b.CreatedAt, err = parseTime(created); err != nil {
		return domain.Board{}, err
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Board{}, err
	}
	return b, nil
}

// ListBoards returns all boards, newest first.
func (s *Storage) ListBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+boardColumns+`
		FROM boards ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, classify("list boards", err)
	}
	defer rows.Close()

	boards := []domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, classify("list boards", err)
		}
		boards = append(boards, b)
	}
	return boards, classify("list boards", rows.Err())
}

func getBoard(ctx context.Context, q queryer, id string) (*domain.Board, error) {
	b, err := scanBoard(q.QueryRowContext(ctx, `
		SELECT `+boardColumns+` FROM boards WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get board", err)
	}
	return &b, nil
}

// GetBoard retrieves a board by ID.
func (s *Storage) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	return getBoard(ctx, s.db, id)
}

// GetBoardDetail loads the board tree from a single read transaction.
func (s *Storage) GetBoardDetail(ctx context.Context, id string) (*domain.BoardDetail, error) {
	tx, err := s.readTx(ctx)
	if err != nil {
		return nil, classify("get board detail", err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := getBoard(ctx, tx, id)
	if err != nil || b == nil {
		return nil, err
	}
	statuses, err := listStatuses(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := queryTasks(ctx, tx, `
		SELECT `+prefixed("t", taskColumns)+`
		FROM tasks t JOIN board_statuses bs ON bs.id = t.board_status_id
		WHERE bs.board_id = ?
		ORDER BY t.position ASC, t.created_at ASC, t.rowid ASC
	`, id)
	if err != nil {
		return nil, err
	}
	subs, err := querySubTasks(ctx, tx, `
		SELECT `+prefixed("st", subTaskColumns)+`
		FROM sub_tasks st
		JOIN tasks t ON t.id = st.task_id
		JOIN board_statuses bs ON bs.id = t.board_status_id
		WHERE bs.board_id = ?
		ORDER BY st.created_at ASC, st.rowid ASC
	`, id)
	if err != nil {
		return nil, err
	}

	byStatus := map[string][]domain.TaskWithSubTasks{}
	for _, t := range attachSubTasks(tasks, subs) {
		byStatus[t.BoardStatusID] = append(byStatus[t.BoardStatusID], t)
	}
	detail := &domain.BoardDetail{Board: *b, Statuses: make([]domain.StatusWithTasks, 0, len(statuses))}
	for _, st := range statuses {
		ts := byStatus[st.ID]
		if ts == nil {
			ts = []domain.TaskWithSubTasks{}
		}
		detail.Statuses = append(detail.Statuses, domain.StatusWithTasks{BoardStatus: st, Tasks: ts})
	}
	return detail, nil
}

// InsertBoard stores a new board.
func (s *Storage) InsertBoard(ctx context.Context, b domain.Board) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boards (`+boardColumns+`) VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.Name, nullString(b.Description), formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	return classify("insert board", err)
}

// UpdateBoard applies the supplied fields and returns the stored row.
func (s *Storage) UpdateBoard(ctx context.Context, id string, in domain.UpdateBoardInput, updatedAt time.Time) (*domain.Board, error) {
	var a assignments
	if in.Name != nil {
		a.set("name", *in.Name)
	}
	if in.Description.Set {
		a.set("description", nullString(in.Description.Ptr()))
	}
	a.set("updated_at", formatTime(updatedAt))

	b, err := scanBoard(s.db.QueryRowContext(ctx, `
		UPDATE boards SET `+a.clause()+` WHERE id = ?
		RETURNING `+boardColumns,
		append(a.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: domain.ResourceBoard}
	}
	if err != nil {
		return nil, classify("update board", err)
	}
	return &b, nil
}

// DeleteBoard removes a board; statuses, tasks and subtasks follow by cascade.
func (s *Storage) DeleteBoard(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "delete board", "boards", id, domain.ResourceBoard)
}
