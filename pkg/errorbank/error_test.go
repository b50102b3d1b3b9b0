package errorbank

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("x").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("x").StatusCode())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").StatusCode())
	assert.Equal(t, http.StatusUnprocessableEntity, Unprocessable("x").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal("x").StatusCode())
}

func TestGRPCCodes(t *testing.T) {
	assert.Equal(t, codes.Unauthenticated, Unauthorized("x").GRPCCode())
	assert.Equal(t, codes.PermissionDenied, Forbidden("x").GRPCCode())
	assert.Equal(t, codes.FailedPrecondition, Unprocessable("x").GRPCCode())
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := From(plain)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.ErrorIs(t, appErr, plain)
}

func TestFromPreservesAppErrors(t *testing.T) {
	orig := NotFound("order missing")
	wrapped := From(orig)
	assert.Same(t, orig, wrapped)
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("query failed", WithCause(cause))
	assert.ErrorIs(t, err, cause)
}
