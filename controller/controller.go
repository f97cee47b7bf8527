package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/polyhx/event-api/apperr"
	"github.com/rs/zerolog/log"
)

// userIDHeader carries the user id claim extracted by the gateway.
const userIDHeader = "token-claim-user_id"

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidOperation:
		return http.StatusBadRequest
	case apperr.KindUnresolvable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates a service failure into a transport response. The
// stable code goes out with the message so clients can match on it.
func respondError(ctx *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		ctx.JSON(statusForKind(appErr.Kind), gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}

	log.Error().Err(err).Str("path", ctx.FullPath()).Msg("unhandled error")
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL",
		"message": "internal error",
	})
}
