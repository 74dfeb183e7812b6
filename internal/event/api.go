// Exposes all of the REST APIs related to Event creation in Gatepass.

package event

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package event onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithAcc gin.HandlerFunc, adminOnly gin.HandlerFunc, logger log.Logger) {
	eventGroup := router.Group("/api/event")
	{
		eventGroup.POST("/create", authWithAcc, adminOnly, createEvent(service, logger))
		eventGroup.GET("/get", authWithAcc, getEvent(service, logger))
		eventGroup.GET("/get_all", authWithAcc, adminOnly, getAdminEvents(service, logger))
	}
}

// createEvent returns a handler which takes care of creating events in Gatepass.
func createEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var event entity.Event

		// Serialize received data into Event struct
		if binderr := gctx.BindJSON(&event); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Event struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Fetch username from context which will be used as the event admin
		var ok bool = true
		event.Admin, ok = gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in create_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		// Apply the service logic for Create Event in Gatepass
		err := service.createevent(gctx, &event)
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

// getEvent returns a handler which fetches a single event by its code.
func getEvent(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in get_event")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		eventCode := gctx.DefaultQuery("event_code", "")
		if eventCode == "" {
			gctx.Status(http.StatusBadRequest)
			return
		}
		data, err := service.getevent(gctx, eventCode, username)
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
		gctx.JSON(http.StatusOK, data)
	}
}

// getAdminEvents returns a handler which lists events created by the calling admin.
func getAdminEvents(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in get_admin_events")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		events, err := service.getadminevents(gctx, username)
		if err != nil {
			err, ok := err.(errors.ErrorResponse)
			if !ok {
				// Type assertion error
				gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
				return
			}
			gctx.JSON(err.Status, err)
			return
		}
		gctx.JSON(http.StatusOK, gin.H{"events": events})
	}
}
