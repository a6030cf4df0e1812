package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gamerpro/gamerpro/staging"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin to the deployed frontend host.
		return true
	},
}

type WebSocketHandler struct {
	hub    *staging.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *staging.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeLobby upgrades the connection and subscribes it to the tournament's
// lobby room. The socket is push-only; clients never send messages.
func (h *WebSocketHandler) ServeLobby(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade lobby connection",
			slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := staging.NewClient(h.hub, conn, tournamentID)
	h.hub.Register(client)
}
