package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/strefethen/home-hub-go/internal/api"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Callers are LAN clients; auth already ran in the middleware chain.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes wires the event stream route to the router.
func RegisterRoutes(router chi.Router, hub *Hub) {
	router.Method(http.MethodGet, "/v1/events", api.Handler(subscribe(hub)))
}

func subscribe(hub *Hub) api.Handler {
	return func(w http.ResponseWriter, r *http.Request) error {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return nil
		}
		hub.Add(conn)
		return nil
	}
}
