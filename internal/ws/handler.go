package ws

import (
	"net/http"
	"os"

	"pvp_escrow/internal/logger"
	"pvp_escrow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades GET /ws/matches/:id into the event feed for that match.
// Auth comes from a token query param because browsers cannot set headers on
// websocket dials.
func HandleWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerKey, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		matchID := c.Param("id")
		if matchID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match id required"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(playerKey, matchID, conn, hub)
		go client.Run()
	}
}
