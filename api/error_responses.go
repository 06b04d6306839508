package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	collexerrors "github.com/flexidx/collex/internal/errors"
)

// errorPayload is the stable {"code": <int>, "error": <string>} shape
// spec.md §6 requires for every error response.
type errorPayload struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// writeError maps err to an HTTP status and writes the conformance
// payload. Caller errors from the domain packages map to 400/404/409;
// anything else is a 500 with its message passed through.
func writeError(c *gin.Context, err error) {
	status, message := classify(err)
	c.JSON(status, errorPayload{Code: status, Error: message})
}

func classify(err error) (int, string) {
	var collErr *collexerrors.CollectionNotFoundError
	var docErr *collexerrors.DocumentNotFoundError
	var collExists *collexerrors.CollectionAlreadyExistsError
	var docExists *collexerrors.DocumentAlreadyExistsError
	var schemaErr *collexerrors.SchemaError
	var queryErr *collexerrors.QueryError

	switch {
	case errors.As(err, &collErr):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &docErr):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &collExists):
		return http.StatusConflict, err.Error()
	case errors.As(err, &docExists):
		return http.StatusConflict, err.Error()
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &queryErr):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorPayload{Code: http.StatusBadRequest, Error: message})
}
