package rpc

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roman-ryzenadvanced/OpenQode-Public-Alpha-sub003/internal/builder"
)

const (
	eventsWSWriteWait = 10 * time.Second
	eventsWSPongWait  = 60 * time.Second
	eventsWSPingEvery = (eventsWSPongWait * 9) / 10
)

var eventsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// EventsHandler streams build progress events over a websocket. A client
// optionally filters to one project with ?project_id=.
type EventsHandler struct {
	bus *builder.Bus
}

func NewEventsHandler(bus *builder.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

func (h *EventsHandler) HandleBuildEventsWS(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))

	conn, err := eventsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(eventsWSPongWait)); err != nil {
		log.Printf("build events ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsWSPongWait))
	})

	sub, cancelSub := h.bus.Subscribe()
	defer cancelSub()

	done := make(chan struct{})
	// reader exists only to service pongs and detect the close
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if projectID != "" && ev.ProjectID != projectID {
				continue
			}
			if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
