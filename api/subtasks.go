package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskly-api/domain"
)

// listSubTasks returns subtasks oldest first, optionally only those of ?taskId=.
func listSubTasks(svc SubTaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		taskID, err := queryID(c, "taskId")
		if err != nil {
			return input(c, err)
		}
		subTasks, err := call(c, func(ctx context.Context) ([]domain.SubTask, error) {
			return svc.List(ctx, taskID)
		})
		if err != nil {
			return err
		}
		metricsFrom(c).SetItemsReturned(len(subTasks))
		return c.JSON(http.StatusOK, subTasks)
	}
}

func getSubTask(svc SubTaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.SubTask, error) {
			return svc.Get(ctx, id)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, st)
	}
}

func createSubTask(svc SubTaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in domain.CreateSubTaskInput
		if err := bindBody(c, schemaCreateSubTask, &in); err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.SubTask, error) {
			return svc.Create(ctx, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, st)
	}
}

func updateSubTask(svc SubTaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		var in domain.UpdateSubTaskInput
		if err := bindBody(c, schemaUpdateSubTask, &in); err != nil {
			return input(c, err)
		}
		st, err := call(c, func(ctx context.Context) (*domain.SubTask, error) {
			return svc.Update(ctx, id, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, st)
	}
}

func deleteSubTask(svc SubTaskService) echo.HandlerFunc {
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
