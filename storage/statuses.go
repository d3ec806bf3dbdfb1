package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"taskly-api/domain"
)

const statusColumns = "id, board_id, name, description, position, created_at, updated_at"

// prefixed qualifies every column in cols with alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

func scanStatus(sc scanner) (domain.BoardStatus, error) {
	var (
		st               domain.BoardStatus
		desc             sql.NullString
		created, updated string
	)
	if err := sc.Scan(&st.ID, &st.BoardID, &st.Name, &desc, &st.Position, &created, &updated); err != nil {
		return domain.BoardStatus{}, err
	}
	st.Description = stringPtr(desc)
	var err error
	if st.CreatedAt, err = parseTime(created); err != nil {
		return domain.BoardStatus{}, err
	}
	if st.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.BoardStatus{}, err
	}
	return st, nil
}

func listStatuses(ctx context.Context, q queryer, boardID string) ([]domain.BoardStatus, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+statusColumns+`
		FROM board_statuses WHERE board_id = ?
		ORDER BY position ASC, created_at ASC, rowid ASC
	`, boardID)
	if err != nil {
		return nil, classify("list statuses", err)
	}
	defer rows.Close()

	statuses := []domain.BoardStatus{}
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, classify("list statuses", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, classify("list statuses", rows.Err())
}

// ListStatuses returns the statuses of a board ordered by position.
func (s *Storage) ListStatuses(ctx context.Context, boardID string) ([]domain.BoardStatus, error) {
	return listStatuses(ctx, s.db, boardID)
}

func (s *Storage) GetStatus(ctx context.Context, id string) (*domain.BoardStatus, error) {
	st, err := scanStatus(s.db.QueryRowContext(ctx, `
		SELECT `+statusColumns+` FROM board_statuses WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get status", err)
	}
	return &st, nil
}

func (s *Storage) InsertStatus(ctx context.Context, st domain.BoardStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_statuses (`+statusColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, st.ID, st.BoardID, st.Name, nullString(st.Description), st.Position,
		formatTime(st.CreatedAt), formatTime(st.UpdatedAt))
	return classify("insert status", err)
}

func (s *Storage) UpdateStatus(ctx context.Context, id string, in domain.UpdateStatusInput, updatedAt time.Time) (*domain.BoardStatus, error) {
	var a assignments
	if in.Name != nil {
		a.set("name", *in.Name)
	}
	if in.Description.Set {
		a.set("description", nullString(in.Description.Ptr()))
	}
	if in.Position != nil {
		a.set("position", *in.Position)
	}
	a.set("updated_at", formatTime(updatedAt))

	st, err := scanStatus(s.db.QueryRowContext(ctx, `
		UPDATE board_statuses SET `+a.clause()+` WHERE id = ?
		RETURNING `+statusColumns,
		append(a.args, id)...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: domain.ResourceStatus}
	}
	if err != nil {
		return nil, classify("update status", err)
	}
	return &st, nil
}

// DeleteStatus removes a status together with its tasks and their subtasks.
func (s *Storage) DeleteStatus(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "delete status", "board_statuses", id, domain.ResourceStatus)
}
