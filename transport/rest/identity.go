package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/entity"
)

const (
	// PlayerIDHeader carries the stable player id issued by the identity provider.
	PlayerIDHeader = "X-Player-ID"

	playerIDKey = "playerID"
)

// playerIdentity rejects requests without a player id and stores it on the context.
func playerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := c.GetHeader(PlayerIDHeader)
		if playerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": PlayerIDHeader + " header is required"})
			return
		}

		if playerID == entity.AIPlayerID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "player id is reserved"})
			return
		}

		c.Set(playerIDKey, playerID)
		c.Next()
	}
}
