package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mauer01/5D-Chess-League-Bot/brackets"
	"github.com/mauer01/5D-Chess-League-Bot/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The spectator feed is public and the frontend host is not
		// fixed yet, so any origin may subscribe.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs subscribes the client to the live feed of a division. The
// division label in the URL goes through the same normalization as
// everywhere else, so "/ws/divisions/Procrastination%20League" lands in
// the lazy league room.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	division := chi.URLParam(r, "division")
	if division == "" {
		http.Error(w, "Missing division", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade websocket connection",
			slog.String("division", division),
			slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Division: models.NormalizeLeagueName(division),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
