package domain

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StatusService implements CRUD for statuses addressed under their board.
// A status requested under a board it does not belong to is reported as
// missing.
type StatusService struct {
	st    StatusStore
	now   func() time.Time
	newID func() string
}

func NewStatusService(st StatusStore) StatusService {
	return StatusService{st: st, now: time.Now, newID: defaultIDs()}
}

func (s StatusService) requireBoard(ctx context.Context, boardID string) error {
	b, err := s.st.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if b == nil {
		return notFound(ResourceBoard)
	}
	return nil
}

func (s StatusService) owned(ctx context.Context, boardID, statusID string) (*BoardStatus, error) {
	if err := s.requireBoard(ctx, boardID); err != nil {
		return nil, err
	}
	st, err := s.st.GetStatus(ctx, statusID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.BoardID != boardID {
		return nil, notFound(ResourceStatus)
	}
	return st, nil
}

// List returns the board's statuses ordered by position.
func (s StatusService) List(ctx context.Context, boardID string) ([]BoardStatus, error) {
	if err := s.requireBoard(ctx, boardID); err != nil {
		return nil, err
	}
	out, err := s.st.ListStatuses(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []BoardStatus{}
	}
	return out, nil
}

func (s StatusService) Get(ctx context.Context, boardID, statusID string) (*BoardStatus, error) {
	return s.owned(ctx, boardID, statusID)
}

func (s StatusService) Create(ctx context.Context, boardID string, in CreateStatusInput) (*BoardStatus, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireBoard(ctx, boardID); err != nil {
		return nil, err
	}
	ts := stamp(s.now)
	st := BoardStatus{
		ID:          s.newID(),
		BoardID:     boardID,
		Name:        in.Name,
		Description: in.Description,
		Position:    in.Position,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.st.InsertStatus(ctx, st); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"board": boardID, "status": st.ID}).Debug("status created")
	return &st, nil
}

func (s StatusService) Update(ctx context.Context, boardID, statusID string, in UpdateStatusInput) (*BoardStatus, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, boardID, statusID); err != nil {
		return nil, err
	}
	return s.st.UpdateStatus(ctx, statusID, in, stamp(s.now))
}

// Delete removes the status with its tasks and their subtasks.
func (s StatusService) Delete(ctx context.Context, boardID, statusID string) error {
	if _, err := s.owned(ctx, boardID, statusID); err != nil {
		return err
	}
	if err := s.st.DeleteStatus(ctx, statusID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"board": boardID, "status": statusID}).Debug("status deleted")
	return nil
}
