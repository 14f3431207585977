package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/glyphlang/glyph/pkg/jobrunner"
	"github.com/glyphlang/glyph/pkg/server"
	"github.com/glyphlang/glyph/pkg/sse"
)

// streamJobEvents polls a job's record and pushes one SSE event per status
// change, for clients that want a plain HTTP stream instead of opening a
// WebSocket connection to the notifier hub.
func streamJobEvents(ctx *server.Context, runner *jobrunner.Runner, id uuid.UUID) error {
	w, err := sse.NewWriter(ctx.ResponseWriter)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request.Context()
	var last jobrunner.Status
	deadline := time.Now().Add(5 * time.Minute)

	for time.Now().Before(deadline) {
		select {
		case <-reqCtx.Done():
			return nil
		default:
		}

		rec, err := runner.Store().Load(reqCtx, id)
		if err != nil {
			return w.Send(sse.Event{Type: "error", Data: err.Error()})
		}
		if rec.Status != last {
			last = rec.Status
			if sendErr := w.Send(sse.Event{Type: "status", Data: rec}); sendErr != nil {
				return sendErr
			}
		}
		if rec.Status == jobrunner.StatusDone || rec.Status == jobrunner.StatusFailed {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return w.Send(sse.Event{Type: "timeout", Data: "job did not reach a terminal status in time"})
}
