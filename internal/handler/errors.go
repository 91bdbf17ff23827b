package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/internal/domain"
	"github.com/weiawesome/wes-io-social/pkg/log"
	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// fail maps err onto the response envelope by kind. Anything unclassified is
// logged with op and reported as an internal error.
func fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		response.InvalidCode(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldUserID, middleware.GetUserID(c)).Msg(op + " failed")
		response.InternalError(c, "failed to "+op)
	}
}

// bindJSON decodes the body into req, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Str(log.FieldPath, c.FullPath()).Msg("invalid request body")
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}
