package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"taskly-api/domain"
)

// listTasks returns every task, or only those of ?boardStatusId=.
func listTasks(svc TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		statusID, err := queryID(c, "boardStatusId")
		if err != nil {
			return input(c, err)
		}
		tasks, err := call(c, func(ctx context.Context) ([]domain.TaskWithSubTasks, error) {
			return svc.List(ctx, statusID)
		})
		if err != nil {
			return err
		}
		metricsFrom(c).SetItemsReturned(len(tasks))
		return c.JSON(http.StatusOK, tasks)
	}
}

func getTask(svc TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		t, err := call(c, func(ctx context.Context) (*domain.TaskWithSubTasks, error) {
			return svc.Get(ctx, id)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, t)
	}
}

func createTask(svc TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var in domain.CreateTaskInput
		if err := bindBody(c, schemaCreateTask, &in); err != nil {
			return input(c, err)
		}
		t, err := call(c, func(ctx context.Context) (*domain.Task, error) {
			return svc.Create(ctx, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, t)
	}
}

func updateTask(svc TaskService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return input(c, err)
		}
		var in domain.UpdateTaskInput
		if err := bindBody(c, schemaUpdateTask, &in); err != nil {
			return input(c, err)
		}
		t, err := call(c, func(ctx context.Context) (*domain.Task, error) {
			return svc.Update(ctx, id, in)
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, t)
	}
}

func deleteTask(svc TaskService) echo.HandlerFunc {
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
