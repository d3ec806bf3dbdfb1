package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskly-api/domain"
)

type errorResponse struct {
	Error   string                  `json:"error"`
	Details *domain.ValidationError `json:"details,omitempty"`
}

// classify maps an error onto its HTTP status and response body.
func classify(err error) (int, errorResponse) {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		se *domain.StoreError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: ve}
	case errors.As(err, &nf):
		return http.StatusNotFound, errorResponse{Error: nf.Error()}
	case errors.Is(err, domain.ErrRelatedRecordMissing):
		return http.StatusBadRequest, errorResponse{Error: "Related record not found"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorResponse{Error: "A record with this value already exists"}
	case errors.As(err, &se):
		return http.StatusInternalServerError, errorResponse{Error: "Database error"}
	case errors.As(err, &he):
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, errorResponse{Error: "Not found"}
		case http.StatusInternalServerError:
			return he.Code, errorResponse{Error: "Internal server error"}
		}
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, errorResponse{Error: msg}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
}

// ErrorHandler renders every failure as {"error": ...}. Server side failures
// are logged with their cause; the caller only sees the generic message.
func ErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err)
		if status >= http.StatusInternalServerError && logger != nil {
			logger.WithFields(log.Fields{
				"method":     c.Request().Method,
				"route":      c.Path(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).WithError(err).Error("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil && logger != nil {
			logger.WithError(werr).Warn("write error response")
		}
	}
}
