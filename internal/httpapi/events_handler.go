package httpapi

import (
	"fmt"
	"net/http"
)

// Events streams cart change notifications as server-sent events, one
// "cartUpdated" event per mutation. The event carries no payload: clients
// re-read the cart, and get one event up front so they load current state at
// subscription time.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream")
		return
	}

	sub := h.carts.Subscribe(sessionID(r))
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent := func() {
		fmt.Fprint(w, "event: cartUpdated\ndata: {}\n\n")
		flusher.Flush()
	}
	writeEvent()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-sub.C:
			if !open {
				return
			}
			writeEvent()
		}
	}
}
