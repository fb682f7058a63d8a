package controllers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/feedpulse/feedpulse/realtime"
)

// LiveController streams feed change events to connected clients over SSE.
type LiveController struct {
	hub *realtime.Hub
}

// NewLiveController creates a LiveController.
func NewLiveController(hub *realtime.Hub) *LiveController {
	return &LiveController{hub: hub}
}

// Stream holds the connection open and forwards every broadcast event as an
// SSE message named "posts" until the client disconnects.
func (l *LiveController) Stream(ctx *gin.Context) {
	id, events := l.hub.Subscribe()
	defer l.hub.Unsubscribe(id)

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	clientGone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			ctx.SSEvent("posts", ev)
			return true
		case <-clientGone:
			return false
		}
	})
}
