package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

// Register wires up all API routes on the provided Echo instance. Resource
// routes live under prefix; health and the API description are mounted at
// the root.
func Register(e *echo.Echo, prefix string, svc Services, health HealthChecker) {
	g := e.Group(prefix)

	g.GET("/boards", listBoards(svc.Boards))
	g.POST("/boards", createBoard(svc.Boards))
	g.GET("/boards/:id", getBoard(svc.Boards))
	g.PUT("/boards/:id", updateBoard(svc.Boards))
	g.DELETE("/boards/:id", deleteBoard(svc.Boards))

	g.GET("/boards/:boardId/statuses", listStatuses(svc.Statuses))
	g.POST("/boards/:boardId/statuses", createStatus(svc.Statuses))
	g.GET("/boards/:boardId/statuses/:statusId", getStatus(svc.Statuses))
	g.PUT("/boards/:boardId/statuses/:statusId", updateStatus(svc.Statuses))
	g.DELETE("/boards/:boardId/statuses/:statusId", deleteStatus(svc.Statuses))

	g.GET("/tasks", listTasks(svc.Tasks))
	g.POST("/tasks", createTask(svc.Tasks))
	g.GET("/tasks/:id", getTask(svc.Tasks))
	g.PUT("/tasks/:id", updateTask(svc.Tasks))
	g.DELETE("/tasks/:id", deleteTask(svc.Tasks))

	g.GET("/subtasks", listSubTasks(svc.SubTasks))
	g.POST("/subtasks", createSubTask(svc.SubTasks))
	g.GET("/subtasks/:id", getSubTask(svc.SubTasks))
	g.PUT("/subtasks/:id", updateSubTask(svc.SubTasks))
	g.DELETE("/subtasks/:id", deleteSubTask(svc.SubTasks))

	e.GET("/health", healthz(health))
	e.GET("/openapi.json", openAPIJSON(prefix))
	e.GET("/openapi.yaml", openAPIYAML(prefix))
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthz(health HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				log.WithError(err).Warn("health check failed")
				return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}

// call runs a service operation and records its duration on the request.
func call[T any](c echo.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	m := metricsFrom(c)
	start := time.Now()
	out, err := fn(c.Request().Context())
	m.ObserveService(time.Since(start))
	if err != nil {
		m.SetErrorStage("service")
	}
	return out, err
}

// exec is call for operations without a result.
func exec(c echo.Context, fn func(ctx context.Context) error) error {
	_, err := call(c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// input marks the failure stage when decoding or path validation fails.
func input(c echo.Context, err error) error {
	if err != nil {
		metricsFrom(c).SetErrorStage("validation")
	}
	return err
}
