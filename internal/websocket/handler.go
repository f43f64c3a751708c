package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// UserResolver maps an authenticated request to the internal user id whose
// changes the connection should receive.
type UserResolver func(r *http.Request) (string, error)

// HandleWebSocket upgrades authenticated requests and runs them as hub clients.
func HandleWebSocket(hub *Hub, resolve UserResolver, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := resolve(r)
		if err != nil {
			logger.Error("resolve websocket user", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // token auth, not cookies, so any origin is fine
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("websocket connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
		logger.Debug("websocket disconnected", "user_id", userID)
	}
}
