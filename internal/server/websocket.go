package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"sleepygame/internal/game"
	"sleepygame/internal/session"
)

// WSMessage is the JSON envelope for WebSocket messages.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name,omitempty"`
}

type actionPayload struct {
	Action game.Action `json:"action"`
}

type disconnectPayload struct {
	PlayerID string `json:"playerId"`
}

type statePayload struct {
	State        any                 `json:"state"`
	ValidActions []game.Action       `json:"validActions"`
	SessionInfo  session.Info        `json:"sessionInfo"`
	Results      []game.PlayerResult `json:"results,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	sess, ok := s.manager.Get(code)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.String("room", code), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		sendWSError(ctx, conn, errors.New("first message must be a join"))
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil || join.PlayerID == "" {
		sendWSError(ctx, conn, errors.New("invalid join payload"))
		return
	}

	playerID := join.PlayerID
	send := make(chan []byte, 64)

	// Try to reconnect existing player, or add new one
	if !sess.ConnectPlayer(playerID, send) {
		if err := sess.AddPlayer(playerID, join.Name); err != nil {
			sendWSError(ctx, conn, err)
			return
		}
		sess.ConnectPlayer(playerID, send)
	}
	log := s.logger.With(zap.String("room", code), zap.String("player_id", playerID))
	log.Info("player connected")

	// Notify all players about the roster change
	s.broadcastState(sess)

	// Writer goroutine: send messages from the channel to the websocket
	go func() {
		for msg := range send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWSMsg(send, "error", errorPayload{Message: "invalid message"})
			continue
		}
		if !s.handleMessage(sess, playerID, send, msg) {
			break
		}
	}

	// Seat is kept so the player can reconnect
	log.Info("player disconnected")
	sess.Broadcast(encodeWSMsg("player_disconnected", disconnectPayload{PlayerID: playerID}))
}

// handleMessage processes one client message. It returns false once the
// player has left the room.
func (s *Server) handleMessage(sess *session.Session, playerID string, send chan []byte, msg WSMessage) bool {
	switch msg.Type {
	case "action":
		var ap actionPayload
		if err := json.Unmarshal(msg.Payload, &ap); err != nil {
			sendWSMsg(send, "error", errorPayload{Message: "invalid action payload"})
			return true
		}
		if err := s.manager.Apply(sess, playerID, ap.Action); err != nil {
			s.logger.Debug("action rejected",
				zap.String("room", sess.Code),
				zap.String("player_id", playerID),
				zap.String("action", ap.Action.Type),
				zap.Error(err))
			sendWSMsg(send, "error", newErrorPayload(err))
		}

	case "start":
		if sess.Info().HostID != playerID {
			sendWSMsg(send, "error", errorPayload{Message: "only the host can start"})
			return true
		}
		if err := s.manager.Start(sess); err != nil {
			sendWSMsg(send, "error", newErrorPayload(err))
		}

	case "add_bot":
		if sess.Info().HostID != playerID {
			sendWSMsg(send, "error", errorPayload{Message: "only the host can add bots"})
			return true
		}
		if _, err := sess.AddBot(); err != nil {
			sendWSMsg(send, "error", newErrorPayload(err))
			return true
		}
		s.broadcastState(sess)

	case "leave":
		waiting := sess.Info().Status == session.StatusWaiting
		if err := s.manager.Leave(sess, playerID); err != nil {
			sendWSMsg(send, "error", newErrorPayload(err))
			return true
		}
		// A waiting room drops the seat and closes its channel.
		return !waiting

	default:
		sendWSMsg(send, "error", errorPayload{Message: "unknown message type: " + msg.Type})
	}
	return true
}

// broadcastState sends every connected player their own view of the room.
func (s *Server) broadcastState(sess *session.Session) {
	sess.RLock()
	defer sess.RUnlock()
	info := sess.InfoLocked()
	match := sess.Match

	for _, seat := range info.Players {
		p := sess.Players[seat.ID]
		if p == nil || p.Send == nil {
			continue
		}
		sp := statePayload{SessionInfo: info}
		if match != nil && info.Status != session.StatusWaiting {
			sp.State = match.State(seat.ID)
			sp.ValidActions = match.ValidActions(seat.ID)
			if match.IsOver() {
				sp.Results = match.Results()
			}
		}
		sendWSMsg(p.Send, "state", sp)
	}
}

func encodeWSMsg(msgType string, payload any) []byte {
	p, _ := json.Marshal(payload)
	msg, _ := json.Marshal(WSMessage{Type: msgType, Payload: p})
	return msg
}

func sendWSMsg(send chan []byte, msgType string, payload any) {
	select {
	case send <- encodeWSMsg(msgType, payload):
	default:
	}
}

func sendWSError(ctx context.Context, conn *websocket.Conn, err error) {
	p, _ := json.Marshal(newErrorPayload(err))
	msg, _ := json.Marshal(WSMessage{Type: "error", Payload: p})
	conn.Write(ctx, websocket.MessageText, msg)
}
