package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to WebSocket
// and runs them as Hub clients.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: hub.origins,
		})
		if err != nil {
			hub.logger.Warn("accept failed", "error", err, "remote", r.RemoteAddr)
			return
		}

		hub.logger.Debug("client connected", "remote", r.RemoteAddr, "clients", hub.ClientCount()+1)
		client := NewClient(hub, conn, r.RemoteAddr)
		client.Run(r.Context())
		hub.logger.Debug("client disconnected", "remote", r.RemoteAddr)
	}
}
