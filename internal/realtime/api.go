// Exposes the websocket endpoint of the realtime gateway in Gatepass.

package realtime

import (
	"Gatepass/pkg/log"

	"github.com/gin-gonic/gin"
)

// Registers the realtime websocket handler onto the gin server.
// Connections without a valid bearer credential are rejected by authWithAcc
// before the upgrade, no message is ever processed for them.
func APIHandlers(router *gin.Engine, gateway *Gateway, authWithAcc gin.HandlerFunc, logger log.Logger) {
	realtimeGroup := router.Group("/api/realtime")
	{
		realtimeGroup.GET("/ws", authWithAcc, connect(gateway, logger))
	}
}

func connect(gateway *Gateway, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		gateway.HandleConnection(gctx)
	}
}
