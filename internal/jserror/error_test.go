package jserror_test

import (
	"net/http"
	"testing"

	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestJSError(t *testing.T) {
	err := jserror.New("some message")

	assert.Equal(t, "some message", err.Error())
	assert.Equal(t, http.StatusInternalServerError, jserror.StatusCode(errors.New("opaque")))

	assert.Equal(t, http.StatusNotFound, jserror.StatusCode(jserror.NotFound("nope")))
	assert.Equal(t, http.StatusForbidden, jserror.StatusCode(jserror.Forbidden("nope")))
	assert.Equal(t, http.StatusConflict, jserror.StatusCode(jserror.Conflict("nope")))
	assert.Equal(t, http.StatusBadRequest, jserror.StatusCode(jserror.Duplicate("nope")))
	assert.Equal(t, http.StatusBadRequest, jserror.StatusCode(jserror.Validation("nope")))

	assert.Equal(t, jserror.TagConflict, jserror.Tag(jserror.Conflict("nope")))
	assert.Empty(t, jserror.Tag(errors.New("opaque")))
}
