// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided auth token was invalid or expired.
	NotInGameError        = 3002 // Authenticated player has no character in the game.
	InvalidGameIDError    = 3003 // Target game ID in the WS URL does not exist or is invalid.
	ReplacedError         = 3004 // The player opened a newer connection to the same game.
)
