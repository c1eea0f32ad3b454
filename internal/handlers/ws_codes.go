package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	RateLimitedError    websocket.StatusCode = 3004 // Client kept sending after being warned about its message rate.
	SlowConsumerError   websocket.StatusCode = 3005 // Outbound buffer overflowed or a write timed out.
)
