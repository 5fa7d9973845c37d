package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pantry/pkg/domain/entities"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// Problem templates, one per domain error kind.
var (
	ProblemBadRequest = ProblemDetail{
		Type:   "/problems/bad-request",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}
	ProblemValidation = ProblemDetail{
		Type:   "/problems/validation-error",
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}
	ProblemNotFound = ProblemDetail{
		Type:   "/problems/not-found",
		Title:  "Item Not Found",
		Status: http.StatusNotFound,
	}
	ProblemPastDate = ProblemDetail{
		Type:   "/problems/past-date",
		Title:  "Date In The Past",
		Status: http.StatusConflict,
	}
	ProblemInsufficientStock = ProblemDetail{
		Type:   "/problems/insufficient-stock",
		Title:  "Insufficient Stock",
		Status: http.StatusUnprocessableEntity,
	}
	ProblemInternal = ProblemDetail{
		Type:   "/problems/internal-error",
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)

// ProblemFor maps a domain error to its problem template carrying the error text
func ProblemFor(err error) ProblemDetail {
	var problem ProblemDetail
	switch {
	case errors.As(err, &problem):
		return problem
	case errors.Is(err, entities.ErrValidation):
		problem = ProblemValidation
	case errors.Is(err, entities.ErrItemNotFound), errors.Is(err, entities.ErrBatchNotFound):
		problem = ProblemNotFound
	case errors.Is(err, entities.ErrPastDate):
		problem = ProblemPastDate
	case errors.Is(err, entities.ErrInsufficientStock):
		problem = ProblemInsufficientStock
	default:
		problem = ProblemInternal
	}
	return problem.WithDetail(err.Error())
}

// respondProblem sends a ProblemDetail response with proper content type.
func respondProblem(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

func respondError(c *gin.Context, err error) {
	respondProblem(c, ProblemFor(err))
}
