package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskly-api/domain"
)

func listBoards(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boards, err := call(c, svc.List)
		if err != nil {
			return err
		}
		metricsFrom(c).SetItemsReturned(len(boards))
		return c.JSON(http.StatusOK, boards)
	}
}

func getBoard(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		b, err := call(c, func(ctx context.Context) (*domain.BoardDetail, error) {
			return svc.Get(ctx, id)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, b)
	}
}

func createBoard(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in domain.CreateBoardInput
		if err := bindBody(c, schemaCreateBoard, &in); err != nil {
			return input(c, err)
		}
		b, err := call(c, func(ctx context.Context) (*domain.Board, error) {
			return svc.Create(ctx, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, b)
	}
}

func updateBoard(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		var in domain.UpdateBoardInput
		if err := bindBody(c, schemaUpdateBoard, &in); err != nil {
			return input(c, err)
		}
		b, err := call(c, func(ctx context.Context) (*domain.Board, error) {
			return svc.Update(ctx, id, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, b)
	}
}

// deleteBoard removes the board with all of its statuses, tasks and subtasks.
func deleteBoard(svc BoardService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		if err := exec(c, func(ctx context.Context) error { return svc.Delete(ctx, id) }); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
