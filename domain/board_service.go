package domain

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// BoardService implements board CRUD.
type BoardService struct {
	st    BoardStore
	now   func() time.Time
	newID func() string
}

func NewBoardService(st BoardStore) BoardService {
	return BoardService{st: st, now: time.Now, newID: defaultIDs()}
}

// List returns every board, newest first.
func (s BoardService) List(ctx context.Context) ([]Board, error) {
	boards, err := s.st.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []Board{}
	}
	return boards, nil
}

// Get returns the board with its statuses, tasks and subtasks.
func (s BoardService) Get(ctx context.Context, id string) (*BoardDetail, error) {
	b, err := s.st.GetBoardDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, notFound(ResourceBoard)
	}
	return b, nil
}

func (s BoardService) Create(ctx context.Context, in CreateBoardInput) (*Board, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ts := stamp(s.now)
	b := Board{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.st.InsertBoard(ctx, b); err != nil {
		return nil, err
	}
	log.WithField("board", b.ID).Debug("board created")
	return &b, nil
}

func (s BoardService) Update(ctx context.Context, id string, in UpdateBoardInput) (*Board, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.st.GetBoard(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFound(ResourceBoard)
	}
	return s.st.UpdateBoard(ctx, id, in, stamp(s.now))
}

// Delete removes the board and everything beneath it.
func (s BoardService) Delete(ctx context.Context, id string) error {
	existing, err := s.st.GetBoard(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return notFound(ResourceBoard)
	}
	if err := s.st.DeleteBoard(ctx, id); err != nil {
		return err
	}
	log.WithField("board", id).Debug("board deleted")
	return nil
}
