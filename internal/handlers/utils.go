package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/auth"
	"github.com/jason-s-yu/mansion/internal/game"
)

// authCookieName holds the player token issued on game creation.
const authCookieName = "auth_token"

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// requestToken finds the player token of a request: bearer header, then cookie, then ?token=.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if t := extractCookieToken(r.Header.Get("Cookie"), authCookieName); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

// playerFromRequest authenticates the request and returns the player id.
func playerFromRequest(r *http.Request) (uuid.UUID, error) {
	token := requestToken(r)
	if token == "" {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return auth.AuthenticateJWT(token)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorCode maps a game error to a stable identifier for clients.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrGameUnstarted):
		return "game_unstarted"
	case errors.Is(err, game.ErrGameComplete):
		return "game_complete"
	case errors.Is(err, game.ErrAlreadyStarted):
		return "already_started"
	case errors.Is(err, game.ErrInvalidPlayerCount):
		return "invalid_player_count"
	case errors.Is(err, game.ErrActionInWrongStage):
		return "wrong_stage"
	case errors.Is(err, game.ErrActionUnavailable):
		return "action_unavailable"
	case errors.Is(err, game.ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, game.ErrUnknownCharacter):
		return "unknown_character"
	case errors.Is(err, game.ErrCharacterDead):
		return "character_dead"
	case errors.Is(err, game.ErrNoAction):
		return "no_action"
	case errors.Is(err, game.ErrAbility):
		return "ability_error"
	case errors.Is(err, game.ErrRoomAction):
		return "room_action_error"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	default:
		return "bad_request"
	}
}

// httpStatus maps a game error to a response status.
func httpStatus(err error) int {
	switch errorCode(err) {
	case "game_unstarted", "game_complete", "already_started", "wrong_stage":
		return http.StatusConflict
	case "invalid_token":
		return http.StatusUnauthorized
	case "unknown_character":
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]string{
		"code":    errorCode(err),
		"message": err.Error(),
	})
}
