package handlers

import (
	"net/http"

	"github.com/Dosada05/hackmate/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерный Origin проверяет CORS-слой на роутере; сам апгрейд
	// не дублирует проверку.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub *realtime.Hub
}

func NewWebsocketHandler(hub *realtime.Hub) *WebsocketHandler {
	return &WebsocketHandler{hub: hub}
}

// ServePendingHackathons подписывает админа на события комнаты заявок.
// Роут закрыт Authenticate+RequireAdmin, здесь только апгрейд.
func (h *WebsocketHandler) ServePendingHackathons(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту самостоятельно.
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: realtime.PendingHackathonsRoom,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
