package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"

	"balloonpop/internal/wshub"
)

// handleWS upgrades the connection and relays hand-cursor positions between
// the players in a room. Every move message also marks the player active for
// the difficulty controller.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := s.getRoom(r)
	if room == nil {
		http.Error(w, "Room not found", http.StatusBadRequest)
		return
	}

	idCookie, err := r.Cookie("player_id")
	if err != nil {
		http.Error(w, "Not Registered", http.StatusBadRequest)
		return
	}
	player := room.Game.Players.Get(idCookie.Value)
	if player == nil {
		http.Error(w, "Unknown player", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}

	client := &wshub.Client{
		PlayerID: player.ID,
		Name:     player.Name,
		Color:    player.Color,
		Conn:     conn,
		Send:     make(chan []byte, 32),
	}
	room.Hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)

	defer func() {
		room.Hub.Unregister(player.ID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg wshub.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "move":
			room.Game.RecordCursor(player.ID)
			room.Hub.BroadcastExcept(player.ID, wshub.ServerMessage{
				Type:     "move",
				PlayerID: player.ID,
				Color:    player.Color,
				Slot:     player.Slot,
				X:        msg.X,
				Y:        msg.Y,
			})
		case "leave":
			return
		}
	}
}
