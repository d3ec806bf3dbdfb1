package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"taskly-api/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "taskly.db")
	s, err := New(context.Background(), dsn, Options{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func strPtr(s string) *string { return &s }

type tree struct {
	board   domain.Board
	status  domain.BoardStatus
	task    domain.Task
	subTask domain.SubTask
}

func seedTree(t *testing.T, s *Storage) tree {
	t.Helper()
	ctx := context.Background()
	tr := tree{
		board:   domain.Board{ID: "11111111-1111-4111-8111-111111111111", Name: "Roadmap", CreatedAt: at(0), UpdatedAt: at(0)},
		status:  domain.BoardStatus{ID: "22222222-2222-4222-8222-222222222222", BoardID: "11111111-1111-4111-8111-111111111111", Name: "Todo", CreatedAt: at(1), UpdatedAt: at(1)},
		task:    domain.Task{ID: "33333333-3333-4333-8333-333333333333", BoardStatusID: "22222222-2222-4222-8222-222222222222", Title: "Ship", CreatedAt: at(2), UpdatedAt: at(2)},
		subTask: domain.SubTask{ID: "44444444-4444-4444-8444-444444444444", TaskID: "33333333-3333-4333-8333-333333333333", Description: "Write docs", CreatedAt: at(3), UpdatedAt: at(3)},
	}
	if err := s.InsertBoard(ctx, tr.board); err != nil {
		t.Fatalf("insert board: %v", err)
	}
	if err := s.InsertStatus(ctx, tr.status); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	if err := s.InsertTask(ctx, tr.task); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	if err := s.InsertSubTask(ctx, tr.subTask); err != nil {
		t.Fatalf("insert subtask: %v", err)
	}
	return tr
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"sqlite://data/taskly.db":       "data/taskly.db?_foreign_keys=on&_busy_timeout=5000",
		"sqlite:taskly.db?_journal=WAL": "taskly.db?_journal=WAL&_foreign_keys=on&_busy_timeout=5000",
		"file:x.db?_foreign_keys=on":    "file:x.db?_foreign_keys=on&_busy_timeout=5000",
		"plain.db?_busy_timeout=100":    "plain.db?_busy_timeout=100&_foreign_keys=on",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Fatalf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBoardRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	got, err := s.GetBoard(ctx, tr.board.ID)
	if err != nil {
		t.Fatalf("get board: %v", err)
	}
	if got == nil || *got != tr.board {
		t.Fatalf("unexpected board: %#v", got)
	}
	if got.Description != nil {
		t.Fatalf("expected null description, got %q", *got.Description)
	}

	missing, err := s.GetBoard(ctx, "99999999-9999-4999-8999-999999999999")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing board, got %#v, %v", missing, err)
	}
}

func TestListBoardsNewestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	for i, name := range []string{"first", "second", "third"} {
		b := domain.Board{ID: name, Name: name, CreatedAt: at(i), UpdatedAt: at(i)}
		if err := s.InsertBoard(ctx, b); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}
	// Equal timestamps fall back to insertion order.
	tie := domain.Board{ID: "fourth", Name: "fourth", CreatedAt: at(2), UpdatedAt: at(2)}
	if err := s.InsertBoard(ctx, tie); err != nil {
		t.Fatalf("insert tie: %v", err)
	}

	boards, err := s.ListBoards(ctx)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	want := []string{"fourth", "third", "second", "first"}
	if len(boards) != len(want) {
		t.Fatalf("expected %d boards, got %d", len(want), len(boards))
	}
	for i, id := range want {
		if boards[i].ID != id {
			t.Fatalf("position %d: expected %s got %s", i, id, boards[i].ID)
		}
	}
}

func TestListBoardsEmpty(t *testing.T) {
	s := newTestStorage(t)
	boards, err := s.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if boards == nil || len(boards) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", boards)
	}
}

func TestUpdateBoardPartial(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	got, err := s.UpdateBoard(ctx, tr.board.ID, domain.UpdateBoardInput{Description: domain.Some("Q3")}, at(10))
	if err != nil {
		t.Fatalf("update board: %v", err)
	}
	if got.Name != "Roadmap" || got.Description == nil || *got.Description != "Q3" {
		t.Fatalf("unexpected board after update: %#v", got)
	}
	if !got.UpdatedAt.Equal(at(10)) || !got.CreatedAt.Equal(tr.board.CreatedAt) {
		t.Fatalf("unexpected timestamps: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}

	cleared, err := s.UpdateBoard(ctx, tr.board.ID, domain.UpdateBoardInput{Description: domain.Null()}, at(11))
	if err != nil {
		t.Fatalf("clear description: %v", err)
	}
	if cleared.Description != nil {
		t.Fatalf("expected description cleared, got %q", *cleared.Description)
	}

	_, err = s.UpdateBoard(ctx, "missing", domain.UpdateBoardInput{Name: strPtr("x")}, at(12))
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != domain.ResourceBoard {
		t.Fatalf("expected board not found, got %v", err)
	}
}

func TestDeleteBoardCascades(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	if err := s.DeleteBoard(ctx, tr.board.ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if st, _ := s.GetStatus(ctx, tr.status.ID); st != nil {
		t.Fatalf("status survived board delete")
	}
	if task, _ := s.GetTask(ctx, tr.task.ID); task != nil {
		t.Fatalf("task survived board delete")
	}
	if sub, _ := s.GetSubTask(ctx, tr.subTask.ID); sub != nil {
		t.Fatalf("subtask survived board delete")
	}

	err := s.DeleteBoard(ctx, tr.board.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	if err := s.DeleteTask(ctx, tr.task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	subs, err := s.ListSubTasks(ctx, "")
	if err != nil {
		t.Fatalf("list subtasks: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected subtasks removed, got %d", len(subs))
	}
	if st, _ := s.GetStatus(ctx, tr.status.ID); st == nil {
		t.Fatalf("status should survive task delete")
	}
}

func TestForeignKeyViolationIsRelatedRecordMissing(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	err := s.InsertTask(ctx, domain.Task{ID: "t1", BoardStatusID: "nope", Title: "x", CreatedAt: at(0), UpdatedAt: at(0)})
	if !errors.Is(err, domain.ErrRelatedRecordMissing) {
		t.Fatalf("expected related record missing, got %v", err)
	}
	err = s.InsertSubTask(ctx, domain.SubTask{ID: "s1", TaskID: "nope", Description: "x", CreatedAt: at(0), UpdatedAt: at(0)})
	if !errors.Is(err, domain.ErrRelatedRecordMissing) {
		t.Fatalf("expected related record missing, got %v", err)
	}
}

func TestDuplicateIDIsConflict(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)

	err := s.InsertBoard(context.Background(), tr.board)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMoveTaskToUnknownStatus(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)

	_, err := s.UpdateTask(context.Background(), tr.task.ID, domain.UpdateTaskInput{BoardStatusID: strPtr("nope")}, at(5))
	if !errors.Is(err, domain.ErrRelatedRecordMissing) {
		t.Fatalf("expected related record missing, got %v", err)
	}
}

func TestMoveTaskKeepsSubTasks(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	done := domain.BoardStatus{ID: "done", BoardID: tr.board.ID, Name: "Done", Position: 1, CreatedAt: at(4), UpdatedAt: at(4)}
	if err := s.InsertStatus(ctx, done); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	moved, err := s.UpdateTask(ctx, tr.task.ID, domain.UpdateTaskInput{BoardStatusID: strPtr(done.ID), Position: new(int)}, at(5))
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if moved.BoardStatusID != done.ID || moved.Title != "Ship" {
		t.Fatalf("unexpected moved task: %#v", moved)
	}

	tasks, err := s.ListTasks(ctx, done.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || len(tasks[0].SubTasks) != 1 || tasks[0].SubTasks[0].ID != tr.subTask.ID {
		t.Fatalf("expected moved task with its subtask, got %#v", tasks)
	}
	old, err := s.ListTasks(ctx, tr.status.ID)
	if err != nil {
		t.Fatalf("list old status: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected old status empty, got %d", len(old))
	}
}

func TestBoardDetailOrdering(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	// Lower position sorts first regardless of creation order.
	first := domain.BoardStatus{ID: "backlog", BoardID: tr.board.ID, Name: "Backlog", Position: 0, CreatedAt: at(5), UpdatedAt: at(5)}
	if _, err := s.UpdateStatus(ctx, tr.status.ID, domain.UpdateStatusInput{Position: intPtr(2)}, at(6)); err != nil {
		t.Fatalf("reposition status: %v", err)
	}
	if err := s.InsertStatus(ctx, first); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	second := domain.Task{ID: "t-early", BoardStatusID: tr.status.ID, Title: "Plan", Position: 0, CreatedAt: at(7), UpdatedAt: at(7)}
	if _, err := s.UpdateTask(ctx, tr.task.ID, domain.UpdateTaskInput{Position: intPtr(3)}, at(8)); err != nil {
		t.Fatalf("reposition task: %v", err)
	}
	if err := s.InsertTask(ctx, second); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	later := domain.SubTask{ID: "s-later", TaskID: tr.task.ID, Description: "Review", CreatedAt: at(9), UpdatedAt: at(9)}
	if err := s.InsertSubTask(ctx, later); err != nil {
		t.Fatalf("insert subtask: %v", err)
	}

	detail, err := s.GetBoardDetail(ctx, tr.board.ID)
	if err != nil {
		t.Fatalf("board detail: %v", err)
	}
	if len(detail.Statuses) != 2 || detail.Statuses[0].ID != "backlog" || detail.Statuses[1].ID != tr.status.ID {
		t.Fatalf("unexpected status order: %#v", detail.Statuses)
	}
	if detail.Statuses[0].Tasks == nil || len(detail.Statuses[0].Tasks) != 0 {
		t.Fatalf("expected empty task list for backlog, got %#v", detail.Statuses[0].Tasks)
	}
	tasks := detail.Statuses[1].Tasks
	if len(tasks) != 2 || tasks[0].ID != "t-early" || tasks[1].ID != tr.task.ID {
		t.Fatalf("unexpected task order: %#v", tasks)
	}
	if tasks[0].SubTasks == nil || len(tasks[0].SubTasks) != 0 {
		t.Fatalf("expected empty subtask list, got %#v", tasks[0].SubTasks)
	}
	subs := tasks[1].SubTasks
	if len(subs) != 2 || subs[0].ID != tr.subTask.ID || subs[1].ID != "s-later" {
		t.Fatalf("unexpected subtask order: %#v", subs)
	}

	missing, err := s.GetBoardDetail(ctx, "missing")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing board, got %#v, %v", missing, err)
	}
}

func TestUpdateSubTaskCompletion(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	done := true
	got, err := s.UpdateSubTask(ctx, tr.subTask.ID, domain.UpdateSubTaskInput{IsCompleted: &done}, at(20))
	if err != nil {
		t.Fatalf("update subtask: %v", err)
	}
	if !got.IsCompleted || got.Description != "Write docs" {
		t.Fatalf("unexpected subtask: %#v", got)
	}
	reloaded, err := s.GetSubTask(ctx, tr.subTask.ID)
	if err != nil {
		t.Fatalf("get subtask: %v", err)
	}
	if !reloaded.IsCompleted || !reloaded.UpdatedAt.Equal(at(20)) {
		t.Fatalf("update not persisted: %#v", reloaded)
	}
}

func TestStatusDescriptionRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	st := domain.BoardStatus{ID: "review", BoardID: tr.board.ID, Name: "Review", Description: strPtr("Needs eyes"), Position: 4, CreatedAt: at(1), UpdatedAt: at(1)}
	if err := s.InsertStatus(ctx, st); err != nil {
		t.Fatalf("insert status: %v", err)
	}
	got, err := s.GetStatus(ctx, st.ID)
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if got.Description == nil || *got.Description != "Needs eyes" || got.Position != 4 || got.BoardID != tr.board.ID {
		t.Fatalf("unexpected status: %#v", got)
	}
}

func intPtr(v int) *int { return &v }

func TestSeedReplacesContents(t *testing.T) {
	s := newTestStorage(t)
	tr := seedTree(t, s)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, s); err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
	}
	if b, _ := s.GetBoard(ctx, tr.board.ID); b != nil {
		t.Fatalf("existing board should be cleared")
	}
	boards, err := s.ListBoards(ctx)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	if len(boards) != len(demoBoards) {
		t.Fatalf("expected %d boards, got %d", len(demoBoards), len(boards))
	}

	var mobile *domain.Board
	for i := range boards {
		if boards[i].Name == "Mobile App Redesign" {
			mobile = &boards[i]
		}
	}
	if mobile == nil {
		t.Fatalf("demo board missing: %#v", boards)
	}
	detail, err := s.GetBoardDetail(ctx, mobile.ID)
	if err != nil {
		t.Fatalf("board detail: %v", err)
	}
	names := []string{"Backlog", "In Progress", "In Review", "Done"}
	if len(detail.Statuses) != len(names) {
		t.Fatalf("expected %d statuses, got %d", len(names), len(detail.Statuses))
	}
	for i, n := range names {
		if detail.Statuses[i].Name != n {
			t.Fatalf("status %d: expected %s got %s", i, n, detail.Statuses[i].Name)
		}
	}
	auth := detail.Statuses[1].Tasks[0]
	if auth.Title != "Implement biometric authentication" || len(auth.SubTasks) != 5 {
		t.Fatalf("unexpected task: %#v", auth)
	}
	if auth.SubTasks[0].Description != "Research iOS Face ID API" || !auth.SubTasks[0].IsCompleted || auth.SubTasks[4].IsCompleted {
		t.Fatalf("unexpected subtasks: %#v", auth.SubTasks)
	}
}
