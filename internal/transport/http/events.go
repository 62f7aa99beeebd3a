package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketplace_admin/internal/lib/logger/sl"

	"github.com/labstack/echo/v4"
)

const changeEventName = "publications_changed"

// Events godoc
// @Summary Поток сигналов об изменении публикаций (SSE)
// @Description Каждое событие означает только "перечитайте данные".
// @Tags events
// @Produce text/event-stream
// @Success 200
// @Router /api/v1/events [get]
func (r *Routers) Events(c echo.Context) error {
	const op = "http.routers.Events"

	log := r.log.With(
		slog.String("op", op),
		slog.String("remote_ip", c.RealIP()),
	)

	events, cancel := r.PublicationService.Subscribe()
	defer cancel()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return nil
	}
	w.Flush()

	log.Debug("subscriber connected")

	ticker := time.NewTicker(r.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			log.Debug("subscriber gone")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Error("failed to encode event", sl.Err(err))
				continue
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", changeEventName, data); err != nil {
				return nil
			}
			w.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
