package service

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"bookrag/types"
)

// WebSocketService streams answers over a websocket so clients see the
// answer as it is generated.
type WebSocketService struct {
	rag      *RagService
	upgrader websocket.Upgrader
}

func NewWebSocketService(rag *RagService) *WebSocketService {
	return &WebSocketService{
		rag: rag,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

// HandleAsk upgrades the connection and serves ask requests until the
// client disconnects. Each request streams delta frames followed by one
// answer frame carrying the full response with sources.
func (s *WebSocketService) HandleAsk(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketAsk:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			var ask types.AskRequest
			if err := json.Unmarshal(payloadBytes, &ask); err != nil {
				s.writeError(conn, "invalid ask payload")
				continue
			}

			resp, err := s.rag.AskStream(r.Context(), ask, func(delta string) {
				conn.WriteJSON(types.WebSocketResponse{
					Type:    types.TypeWebsocketDelta,
					Payload: delta,
				})
			})
			if err != nil {
				log.Println("Ask error:", err)
				s.writeError(conn, "failed to answer question")
				continue
			}
			if err := conn.WriteJSON(types.WebSocketResponse{
				Type:    types.TypeWebsocketAnswer,
				Payload: resp,
			}); err != nil {
				log.Println("Write error:", err)
			}
		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebSocketResponse{Type: types.TypeWebsocketPong}); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type:", req.Type)
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: message,
	}); err != nil {
		log.Println("Write error:", err)
	}
}
