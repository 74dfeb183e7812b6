// Exposes all of the REST APIs related to Points of check-in in Gatepass.

package poc

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package poc onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithAcc gin.HandlerFunc, adminOnly gin.HandlerFunc, logger log.Logger) {
	pocGroup := router.Group("/api/poc")
	{
		pocGroup.POST("/create", authWithAcc, adminOnly, createPoc(service, logger))
		pocGroup.GET("/get_all", authWithAcc, getPocs(service, logger))
	}
}

// createPoc returns a handler which takes care of creating points of check-in in Gatepass.
func createPoc(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var poc entity.Poc

		// Serialize received data into Poc struct
		if binderr := gctx.BindJSON(&poc); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Poc struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Fetch username from context to verify event ownership
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in create_poc")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		// Apply the service logic for Create Poc in Gatepass
		err := service.createpoc(gctx, &poc, username)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.Status(http.StatusOK)
	}
}

// getPocs returns a handler which lists all points of check-in under an event.
func getPocs(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		eventCode := gctx.DefaultQuery("event_code", "")
		if eventCode == "" {
			gctx.Status(http.StatusBadRequest)
			return
		}
		pocs, err := service.getpocs(gctx, eventCode)
		if err != nil {
			// Error occured, might be validation or server error
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{"pocs": pocs})
	}
}
