package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/repository"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// workflowErrorCases are the sentinel mappings every lifecycle endpoint
// shares. Handlers prepend endpoint-specific cases before these.
func workflowErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
		{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "resource not found"},
		{Err: repository.ErrConflict, Status: http.StatusConflict, Message: "resource was modified concurrently, retry"},
		{Err: domain.ErrInvalidTransition, Status: http.StatusConflict, Message: "state does not allow this action"},
	}
}

// respondWorkflowError maps a lifecycle error, optionally with extra
// endpoint-specific cases taking precedence over the shared ones.
// Validation failures keep their message so clients see which field broke.
func respondWorkflowError(c *gin.Context, err error, fallbackMessage string, extra ...ErrorCase) {
	if errors.Is(err, domain.ErrValidation) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	cases := append(extra, workflowErrorCases()...)
	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, fallbackMessage)
}
