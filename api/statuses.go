package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskly-api/domain"
)

// statusPath validates the board and status ids of a nested status route.
func statusPath(c echo.Context) (boardID, statusID string, err error) {
	if boardID, err = pathID(c, "boardId"); err != nil {
		return "", "", err
	}
	if statusID, err = pathID(c, "statusId"); err != nil {
		return "", "", err
	}
	return boardID, statusID, nil
}

func listStatuses(svc StatusService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boardID, err := pathID(c, "boardId")
		if err != nil {
			return input(c, err)
		}
		statuses, err := call(c, func(ctx context.Context) ([]domain.BoardStatus, error) {
			return svc.List(ctx, boardID)
		})
		if err != nil {
			return err
		}
		metricsFrom(c).SetItemsReturned(len(statuses))
		return c.JSON(http.StatusOK, statuses)
	}
}

func getStatus(svc StatusService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boardID, statusID, err := statusPath(c)
		if err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.BoardStatus, error) {
			return svc.Get(ctx, boardID, statusID)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, st)
	}
}

func createStatus(svc StatusService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boardID, err := pathID(c, "boardId")
		if err != nil {
			return input(c, err)
		}
		var in domain.CreateStatusInput
		if err := bindBody(c, schemaCreateStatus, &in); err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.BoardStatus, error) {
			return svc.Create(ctx, boardID, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, st)
	}
}

func updateStatus(svc StatusService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boardID, statusID, err := statusPath(c)
		if err != nil {
			return input(c, err)
		}
		var in domain.UpdateStatusInput
		if err := bindBody(c, schemaUpdateStatus, &in); err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.BoardStatus, error) {
			return svc.Update(ctx, boardID, statusID, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, st)
	}
}

func deleteStatus(svc StatusService) echo.HandlerFunc {
	return func(c echo.Context) error {
		boardID, statusID, err := statusPath(c)
		if err != nil {
			return input(c, err)
		}
		if err := exec(c, func(ctx context.Context) error { return svc.Delete(ctx, boardID, statusID) }); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}
