package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"relief-ops/internal/service"
	pkgerrors "relief-ops/pkg/errors"
	"relief-ops/pkg/response"
)

// business codes per entity; the generic 10xxx codes live with the middleware
var notFoundCodes = []struct {
	err  error
	code int
}{
	{service.ErrCaseNotFound, 30001},
	{service.ErrVolunteerNotFound, 30003},
	{service.ErrShelterNotFound, 30004},
	{service.ErrBloodUnitNotFound, 40001},
}

// pathID returns the :id path parameter. An id that is not a UUID cannot
// name a row, so it is answered with notFound before reaching storage.
func pathID(c *gin.Context, notFound error) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(c, fmt.Errorf("%w: %s", notFound, id))
		return "", false
	}
	return id, true
}

// writeError maps the error taxonomy to HTTP status and business code
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		code := 10006
		for _, nf := range notFoundCodes {
			if errors.Is(err, nf.err) {
				code = nf.code
				break
			}
		}
		response.NotFound(c, code, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidTransition):
		response.Conflict(c, 30002, err.Error())
	case errors.Is(err, pkgerrors.ErrAlreadyAssigned):
		response.Conflict(c, 31001, err.Error())
	case errors.Is(err, service.ErrUsernameExists):
		response.Conflict(c, 20002, err.Error())
	case errors.Is(err, service.ErrNoPredictionFeed):
		response.Error(c, http.StatusServiceUnavailable, 60001, err.Error())
	case errors.Is(err, service.ErrEmptyPredictions), errors.Is(err, service.ErrMissingXLSXHeader):
		response.UnprocessableEntity(c, 60002, "predictions rejected", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindError 400 for request validation failures
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "validation failed", err.Error())
}
