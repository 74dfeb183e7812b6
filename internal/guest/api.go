// Exposes all of the REST APIs related to Guests and check-ins in Gatepass.

package guest

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package guest onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithAcc gin.HandlerFunc, adminOnly gin.HandlerFunc, pocOnly gin.HandlerFunc, logger log.Logger) {
	guestGroup := router.Group("/api/guest")
	{
		guestGroup.POST("/register", authWithAcc, adminOnly, registerGuest(service, logger))
		guestGroup.POST("/checkin", authWithAcc, pocOnly, checkinGuest(service, logger))
		guestGroup.GET("/get_all", authWithAcc, getGuests(service, logger))
		guestGroup.GET("/stats", authWithAcc, adminOnly, getCheckinStats(service, logger))
	}
}

// registerGuest returns a handler which takes care of registering guests in Gatepass.
func registerGuest(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var guest entity.Guest

		// Serialize received data into Guest struct
		if binderr := gctx.BindJSON(&guest); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Guest struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Fetch username from context to verify event ownership
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in register_guest")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}

		// Apply the service logic for guest registration in Gatepass
		err := service.registerguest(gctx, &guest, username)
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

// checkinGuest returns a handler which records a guest check-in at a point of check-in.
func checkinGuest(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var checkin entity.GuestCheckin

		// Serialize received data into GuestCheckin struct
		if binderr := gctx.BindJSON(&checkin); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with GuestCheckin struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		guest, err := service.checkinguest(gctx, checkin)
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
		gctx.JSON(http.StatusOK, gin.H{"guest": guest})
	}
}

// getGuests returns a handler which lists all guests under an event.
func getGuests(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		eventCode := gctx.DefaultQuery("event_code", "")
		if eventCode == "" {
			gctx.Status(http.StatusBadRequest)
			return
		}
		guests, err := service.getguests(gctx, eventCode)
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
		gctx.JSON(http.StatusOK, gin.H{"guests": guests})
	}
}

// getCheckinStats returns a handler which reports hourly check-in counters for an event.
func getCheckinStats(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in get_checkin_stats")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		eventCode := gctx.DefaultQuery("event_code", "")
		if eventCode == "" {
			gctx.Status(http.StatusBadRequest)
			return
		}
		stats, err := service.getcheckinstats(gctx, eventCode, username)
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
		gctx.JSON(http.StatusOK, gin.H{"checkins_per_hour": stats})
	}
}
