package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"quickchat/internal/presence"
	"quickchat/internal/repository"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
// The user identity is derived from the verified token, never from a bare
// client-supplied id.
func ServeWS(registry *presence.Registry, userRepo repository.UserRepository, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		userID, err := validateToken(tokenStr, jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			log.Printf("ws: accept error: %v", err)
			return
		}

		client := NewClient(conn, userID, func(c *Client) {
			if registry.Unregister(userID, c) {
				touchPresence(userRepo, userID, false)
			}
		})

		// Last connect wins: a newer connection from the same user
		// displaces the old one, which is then shut down.
		if displaced := registry.Register(userID, client); displaced != nil {
			if old, ok := displaced.(*Client); ok {
				old.Close()
			}
		}
		touchPresence(userRepo, userID, true)

		go client.WritePump()
		go client.ReadPump()
	}
}

// touchPresence best-effort updates the advisory is_online/last_seen
// columns. The registry is authoritative while the process lives.
func touchPresence(userRepo repository.UserRepository, userID uuid.UUID, online bool) {
	if err := userRepo.SetOnline(context.Background(), userID, online); err != nil {
		log.Printf("ws: presence update for %s: %v", userID, err)
	}
}

func validateToken(tokenStr, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(sub)
}
