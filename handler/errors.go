package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kochabx/authsvc/core/auth/password"
	"github.com/kochabx/authsvc/core/auth/session"
	"github.com/kochabx/authsvc/core/validator"
	"github.com/kochabx/authsvc/errors"
	"github.com/kochabx/authsvc/transport/http"
	"github.com/kochabx/authsvc/user"
)

var (
	errBadRequest         = errors.BadRequest("invalid request body")
	errInvalidCredentials = errors.Unauthorized("invalid credentials")
	errUnauthorized       = errors.Unauthorized("unauthorized")
	errEmailTaken         = errors.Conflict("email already registered")
	errUserNotFound       = errors.NotFound("user not found")
	errInternal           = errors.Internal("internal server error")
)

// toError 将领域错误映射为对外的结构化错误
func toError(err error) *errors.Error {
	switch {
	case validator.IsValidationError(err):
		return errors.BadRequestWithMetadata(validator.Fields(err), "validation failed").WithCause(err)
	case errors.Is(err, password.ErrTooLong):
		return errors.BadRequestWithMetadata(map[string]string{"password": err.Error()}, "validation failed").WithCause(err)
	case errors.Is(err, user.ErrEmailTaken):
		return errEmailTaken.WithCause(err)
	case errors.Is(err, user.ErrNotFound):
		return errUserNotFound.WithCause(err)
	case errors.Is(err, session.ErrInvalidCredentials):
		return errInvalidCredentials.WithCause(err)
	case errors.Is(err, session.ErrUnauthorized):
		return errUnauthorized.WithCause(err)
	default:
		return errInternal.WithCause(err)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	e := toError(err)
	if e.Code >= 500 {
		h.logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	http.Fail(c, e)
}
