package actions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"gitlab.com/netops-console/vyos_console_api/grid"
	"gitlab.com/netops-console/vyos_console_api/httputils"
	"gitlab.com/netops-console/vyos_console_api/logger"
	"gitlab.com/netops-console/vyos_console_api/reorder"
	"gitlab.com/netops-console/vyos_console_api/service"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

// Ping godoc
// swagger:route GET /ping misc ping
// Ping
//
// Ping the server
//
//	Produces:
//	- application/json
//
//	Schemes: http, https
//
//	Responses:
//	  200: StringResp
func Ping(c *gin.Context) {
	c.JSON(200, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message})
}

func abortWithFields(c *gin.Context, code int, message string, fields []vyos.FieldError) {
	l := getlog(c)
	l.Debug().Int("resp_code", code).Int("fields", len(fields)).Msg(message)
	resp := httputils.RequestError{Error: message}
	for _, f := range fields {
		resp.Fields = append(resp.Fields, httputils.FieldError{Field: f.Field, Message: f.Message})
	}
	c.AbortWithStatusJSON(code, resp)
}

// abortWithServiceError maps an error of the service layer to a response
func abortWithServiceError(c *gin.Context, err error) {
	var apiErr *vyos.APIError
	if errors.As(err, &apiErr) {
		msg, fields := vyos.UserMessage(err)
		code := http.StatusBadGateway
		if apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
			code = http.StatusUnprocessableEntity
		}
		abortWithFields(c, code, msg, fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrCommitInProgress),
		errors.Is(err, service.ErrDraftPending),
		errors.Is(err, service.ErrRuleExists),
		errors.Is(err, grid.ErrDuplicateCard):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRuleNotFound),
		errors.Is(err, grid.ErrCardNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, grid.ErrInvalidSpan),
		errors.Is(err, vyos.ErrUnknownKind),
		errors.Is(err, vyos.ErrMissingName),
		errors.Is(err, service.ErrInvalidRuleNumber),
		errors.Is(err, service.ErrMissingSession),
		errors.Is(err, service.ErrValueTooLong),
		errors.Is(err, reorder.ErrUnknownEvent):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, grid.ErrCapacityExceeded),
		errors.Is(err, grid.ErrOverlap),
		errors.Is(err, grid.ErrOutOfBounds):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		l := getlog(c)
		l.Error().Err(err).Msg("Request failed")
		abortWithError(c, http.StatusInternalServerError, vyos.GenericErrorMessage)
	}
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}
