package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentActor returns the authenticated actor, falling back to a plain
// user when the middleware did not resolve permissions.
func CurrentActor(c *gin.Context) model.Actor {
	if val, ok := c.Get(middleware.ActorContextKey); ok {
		if actor, ok := val.(model.Actor); ok {
			return actor
		}
	}
	return model.Actor{UserID: CurrentUserID(c)}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrInvalidInput),
		errors.Is(err, domainErrors.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrOutOfBounds),
		errors.Is(err, domainErrors.ErrInvalidBound),
		errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrPriceMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domainErrors.ErrConflict),
		errors.Is(err, domainErrors.ErrActiveOrderExists),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrStaleProposal):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the mapped status. Internal errors are not echoed.
func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: http.StatusText(status)})
		return
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: err.Error()})
}
