package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/casting-agency/internal/usecase"
)

const (
	msgBadRequest    = "bad request"
	msgNotFound      = "Not found"
	msgUnprocessable = "unprocessable"
	msgInternal      = "internal server error"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// resourceErrorCases cover every error the actor and movie services surface by sentinel.
var resourceErrorCases = []ErrorCase{
	{Err: usecase.ErrActorNotFound, Status: http.StatusNotFound, Message: msgNotFound},
	{Err: usecase.ErrMovieNotFound, Status: http.StatusNotFound, Message: msgNotFound},
	{Err: usecase.ErrCastingNotFound, Status: http.StatusNotFound, Message: msgNotFound},
	{Err: usecase.ErrInvalidInput, Status: http.StatusUnprocessableEntity, Message: msgUnprocessable},
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
// Unmapped errors are attached to the gin context so the access log records them.
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
			c.AbortWithStatusJSON(cs.Status, NewErrorResponse(c, cs.Status, cs.Message))
			return
		}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(fallbackStatus, NewErrorResponse(c, fallbackStatus, fallbackMessage))
}

// respondResourceError applies the resource error table; store failures become 422.
func respondResourceError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, resourceErrorCases, http.StatusUnprocessableEntity, msgUnprocessable)
}

// bindJSON decodes the body, answering 400 for an empty body and 422 for malformed JSON.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		if errors.Is(err, io.EOF) {
			c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(c, http.StatusBadRequest, msgBadRequest))
			return false
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, NewErrorResponse(c, http.StatusUnprocessableEntity, msgUnprocessable))
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Non-numeric or non-positive ids answer 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse(c, http.StatusNotFound, msgNotFound))
		return 0, false
	}
	return id, true
}

// NotFound answers unmatched routes with the standard error body.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, NewErrorResponse(c, http.StatusNotFound, msgNotFound))
}

// Recovery converts panics into the standard 500 body.
func Recovery(c *gin.Context, recovered any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse(c, http.StatusInternalServerError, msgInternal))
}
