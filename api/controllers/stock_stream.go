package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aurumworks/jewelpos-backend/api/middleware"
	"github.com/aurumworks/jewelpos-backend/api/responses"
	stocksvc "github.com/aurumworks/jewelpos-backend/internal/stock"
	pkgerrors "github.com/aurumworks/jewelpos-backend/pkg/errors"
	"github.com/aurumworks/jewelpos-backend/pkg/logger"
)

const stockStreamKeepalive = 25 * time.Second

// StockStream pushes stock-change events for the caller's store over
// server-sent events. The connection closes when the client goes away.
func StockStream(hub *stocksvc.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		storeID := middleware.StoreIDFromContext(r.Context())

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		fmt.Fprintf(w, "event: connected\ndata: {\"store_id\":%q}\n\n", storeID)
		flusher.Flush()

		events, cancel := hub.Subscribe()
		defer cancel()

		keepalive := time.NewTicker(stockStreamKeepalive)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case payload, open := <-events:
				if !open {
					return
				}
				event, err := stocksvc.DecodeEvent(payload)
				if err != nil {
					if logg != nil {
						logg.Warn(r.Context(), fmt.Sprintf("skip malformed stock event: %v", err))
					}
					continue
				}
				if event.StoreID != storeID {
					continue
				}
				fmt.Fprintf(w, "event: stock\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
