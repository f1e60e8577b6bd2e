package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GameEvents streams session snapshots as Server-Sent Events.
// GET /api/games/{id}/events
//
// The current snapshot is sent as a "snapshot" event on connect and again
// after every roll, swap or move. A "closed" event ends the stream when the
// session is deleted.
func (h *Handlers) GameEvents(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Flush function for streaming
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", "STREAMING_UNSUPPORTED")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// The stream outlives the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	snaps, cancel := e.subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				writeSSEEvent(w, "closed", nil)
				flusher.Flush()
				return
			}
			writeSSEEvent(w, "snapshot", snap)
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
