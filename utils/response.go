package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/apperror"
)

// JSON writes a response body of the form {message, ...payload}.
func JSON(ctx *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	ctx.JSON(status, body)
}

// Fail maps an application error to its HTTP response: {message} plus a
// `data` list of field problems for validation failures. Internal errors are
// logged with their cause; the body only carries the public message.
func Fail(ctx *gin.Context, err error) {
	ae := apperror.From(err)
	if ae.Kind == apperror.Internal && Sugar != nil {
		Sugar.Errorw("request failed", "path", ctx.FullPath(), "error", ae.Error())
	}
	body := gin.H{"message": ae.Message}
	if len(ae.Fields) > 0 {
		body["data"] = ae.Fields
	}
	ctx.JSON(ae.Status(), body)
}
