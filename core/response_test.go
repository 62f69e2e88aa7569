package core_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readershaven/readershaven/core"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) core.Envelope {
	t.Helper()
	var env core.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.OK(rec, map[string]string{"k": "v"}, "fetched")

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "fetched", env.Message)
	assert.Nil(t, env.Error)
}

func TestCreated(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.Created(rec, nil, "created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", decode(t, rec).Status)
}

func TestFail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.Fail(rec, core.ErrNotFound.WithMessage("Book not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Book not found", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestFailFromErrorGeneric(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.FailFromError(rec, errors.New("mongo: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	// Internal detail must not leak to the client.
	assert.Equal(t, "Internal Server Error", env.Message)
	assert.Equal(t, "internal_error", env.Error.Code)
}

func TestFailFromErrorWrappedHTTPError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	wrapped := errors.Join(core.ErrConflict.WithMessage("Username already taken"), errors.New("dup key"))
	core.FailFromError(rec, wrapped)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode(t, rec).Error.Code)
}
