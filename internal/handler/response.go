package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/larder/internal/auth"
	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/websocket"
)

// Publisher delivers change notifications to one user's live connections.
type Publisher interface {
	Publish(userID string, msg websocket.Message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// identity returns the verified caller. Routes are mounted behind
// middleware.RequireIdentity, so it is always present there.
func identity(r *http.Request) model.Identity {
	ident, _ := auth.FromContext(r.Context())
	return ident
}

func publish(p Publisher, userID, entity, action, id string) {
	if p == nil || userID == "" {
		return
	}
	p.Publish(userID, websocket.NewMessage(entity, action, id, nil))
}
