package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

func BenchmarkCreateBoard(b *testing.B) {
	e := newTestServer(b)
	body := []byte(`{"name":"Bench","description":"created by the benchmark"}`)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := serve(e, http.MethodPost, "/api/boards", body)
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status code: %d", rec.Code)
		}
	}
}

func BenchmarkGetBoardDetail(b *testing.B) {
	sizes := []struct {
		name  string
		tasks int
	}{
		{name: "Tasks4", tasks: 4},
		{name: "Tasks64", tasks: 64},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			e := newTestServer(b)
			boardID := benchCreate(b, e, "/api/boards", map[string]any{"name": "Bench"})
			statusID := benchCreate(b, e, "/api/boards/"+boardID+"/statuses", map[string]any{"name": "Todo", "position": 0})
			for i := 0; i < size.tasks; i++ {
				taskID := benchCreate(b, e, "/api/tasks", map[string]any{
					"boardStatusId": statusID,
					"title":         "task " + strconv.Itoa(i),
					"position":      i,
				})
				benchCreate(b, e, "/api/subtasks", map[string]any{"taskId": taskID, "description": "step"})
			}

			b.ReportAllocs()
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					rec := serve(e, http.MethodGet, "/api/boards/"+boardID, nil)
					if rec.Code != http.StatusOK {
						b.Fatalf("unexpected status code: %d", rec.Code)
					}
				}
			})
		})
	}
}

func serve(e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func benchCreate(b *testing.B, e *echo.Echo, path string, body map[string]any) string {
	b.Helper()
	data, err := sonic.Marshal(body)
	if err != nil {
		b.Fatalf("marshal: %v", err)
	}
	rec := serve(e, http.MethodPost, path, data)
	if rec.Code != http.StatusCreated {
		b.Fatalf("create %s: status %d: %s", path, rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		b.Fatalf("decode: %v", err)
	}
	return out.ID
}
