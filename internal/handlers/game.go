// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/auth"
	"github.com/jason-s-yu/mansion/internal/game"
)

// CreateGameRequest is the body of POST /game/create.
type CreateGameRequest struct {
	Participants []game.Participant     `json:"participants"`
	Rules        map[string]interface{} `json:"rules,omitempty"`
}

// SeatResponse tells a player which character they play and the token to use.
type SeatResponse struct {
	PlayerID    uuid.UUID `json:"playerId"`
	CharacterID uuid.UUID `json:"characterId"`
	Persona     string    `json:"persona"`
	Title       string    `json:"title"`
	Token       string    `json:"token"`
}

// CreateGameResponse is returned once a game has been created.
type CreateGameResponse struct {
	GameID uuid.UUID      `json:"gameId"`
	Rules  game.Rules     `json:"rules"`
	Seats  []SeatResponse `json:"seats"`
}

// RegisterRoutes mounts the game endpoints on mux.
func (gs *GameServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /game/create", gs.handleCreateGame)
	mux.HandleFunc("POST /game/{id}/start", gs.handleStartGame)
	mux.HandleFunc("POST /game/{id}/advance", gs.handleAdvanceGame)
	mux.HandleFunc("GET /game/{id}", gs.handleGameState)
	mux.HandleFunc("GET /game/ws/{id}", gs.GameWSHandler())
	mux.HandleFunc("GET /player/games", gs.handlePlayerGames)
}

// handleCreateGame seats the participants in a new game and issues one token per player.
func (gs *GameServer) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	seen := make(map[uuid.UUID]bool, len(req.Participants))
	for i := range req.Participants {
		if req.Participants[i].PlayerID == uuid.Nil {
			req.Participants[i].PlayerID = uuid.New()
		}
		if seen[req.Participants[i].PlayerID] {
			http.Error(w, "player seated twice", http.StatusBadRequest)
			return
		}
		seen[req.Participants[i].PlayerID] = true
	}

	g, err := gs.CreateGame(req.Participants, req.Rules)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CreateGameResponse{GameID: g.ID, Rules: g.Rules}
	for _, c := range g.Characters {
		token, err := auth.CreateJWT(c.PlayerID)
		if err != nil {
			gs.Logger.WithError(err).Error("Failed to sign player token")
			gs.GameStore.DeleteGame(g.ID)
			http.Error(w, "could not issue tokens", http.StatusInternalServerError)
			return
		}
		resp.Seats = append(resp.Seats, SeatResponse{
			PlayerID:    c.PlayerID,
			CharacterID: c.ID,
			Persona:     c.Persona.Name,
			Title:       c.Persona.Title,
			Token:       token,
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

// authorizedGame resolves the game of the path and checks the caller plays in it.
func (gs *GameServer) authorizedGame(w http.ResponseWriter, r *http.Request) (*game.Game, *game.Character, bool) {
	g, _, ok := gs.lookupGame(r.PathValue("id"))
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return nil, nil, false
	}
	playerID, err := playerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return nil, nil, false
	}
	c := g.CharacterByPlayer(playerID)
	if c == nil {
		writeError(w, game.ErrUnknownCharacter)
		return nil, nil, false
	}
	return g, c, true
}

func (gs *GameServer) handleStartGame(w http.ResponseWriter, r *http.Request) {
	g, _, ok := gs.authorizedGame(w, r)
	if !ok {
		return
	}
	if err := g.Start(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g.State())
}

// handleAdvanceGame moves the game to its next phase. The advance that ends the
// last night completes the game and still answers with the final snapshot.
func (gs *GameServer) handleAdvanceGame(w http.ResponseWriter, r *http.Request) {
	g, _, ok := gs.authorizedGame(w, r)
	if !ok {
		return
	}
	before := g.Phase()
	if err := g.Advance(); err != nil {
		if !errors.Is(err, game.ErrGameComplete) || before == game.PhaseComplete {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, g.State())
}

// handleGameState returns the public snapshot, or the caller's private view
// when the request carries the token of one of the players. Games not held by
// this instance are served from the snapshot cache.
func (gs *GameServer) handleGameState(w http.ResponseWriter, r *http.Request) {
	g, id, ok := gs.lookupGame(r.PathValue("id"))
	if !ok {
		if state, found := gs.cachedState(r.Context(), id); found {
			writeJSON(w, http.StatusOK, state)
			return
		}
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if playerID, err := playerFromRequest(r); err == nil {
		if c := g.CharacterByPlayer(playerID); c != nil {
			ps, err := g.PrivateStateFor(c.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, ps)
			return
		}
	}
	writeJSON(w, http.StatusOK, g.State())
}

// handlePlayerGames lists the public snapshots of every game the caller is seated in.
func (gs *GameServer) handlePlayerGames(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	states := []game.GameState{}
	for _, g := range gs.GameStore.GamesOfPlayer(playerID) {
		states = append(states, g.State())
	}
	writeJSON(w, http.StatusOK, states)
}
