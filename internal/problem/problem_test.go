package problem

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

func TestDefaults(t *testing.T) {
	p := New("something went wrong")
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, "Bad preferences error", p.Title)
	assert.Equal(t, DefaultType, p.Type)
}

func TestAbortRendersProblemDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Abort(c, Unauthenticated("missing bearer token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "missing bearer token", body.Detail)
}

func TestAbortHidesUnclassifiedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Abort(c, errors.New("sql: connection refused to 10.0.0.3"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")

	var body Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bad preferences error", body.Title)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "Forbidden: invalid bearer token", Forbidden("invalid bearer token").Error())
	assert.Equal(t, "Bad preferences error", Persistence("").Error())
}
