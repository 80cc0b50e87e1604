package types

const (
	TypeWebsocketPing   = "ping"
	TypeWebsocketPong   = "pong"
	TypeWebsocketAsk    = "ask"
	TypeWebsocketDelta  = "delta"
	TypeWebsocketAnswer = "answer"
	TypeWebsocketError  = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Handle stream responses
type StreamHandler func(delta string)
