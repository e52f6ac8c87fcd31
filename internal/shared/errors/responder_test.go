package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing thing")

func serveProblem(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/things/:id", handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))
	return rec
}

func TestChainedResponder_MapsSentinels(t *testing.T) {
	responder := NewChainedResponder("", MapSentinel(ErrNotFound, errMissing))

	rec := serveProblem(func(c *gin.Context) {
		responder.RespondError(c, errors.Join(errors.New("ctx"), errMissing))
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body.Type)
	assert.Equal(t, "/things/1", body.Instance)
}

func TestChainedResponder_UnknownErrorsDoNotLeak(t *testing.T) {
	responder := NewChainedResponder("https://errors.example")

	rec := serveProblem(func(c *gin.Context) {
		responder.RespondError(c, errors.New("db password is hunter2"))
	})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "https://errors.example/problems/internal-error")
}

func TestRespond_RetryAfter(t *testing.T) {
	rec := serveProblem(func(c *gin.Context) {
		Respond(c, ErrServiceUnavailable.WithRetryAfter(1))
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestWithExtension_LeavesTemplateUntouched(t *testing.T) {
	first := ErrConflict.WithExtension("orderNumber", "A")
	second := first.WithExtension("version", 2)

	assert.Nil(t, ErrConflict.Extensions)
	assert.Len(t, first.Extensions, 1)
	assert.Len(t, second.Extensions, 2)
}
