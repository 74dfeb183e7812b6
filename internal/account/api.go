// Exposes all of the REST APIs related to Accounts in Gatepass.

package account

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package account onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithAcc gin.HandlerFunc, logger log.Logger) {
	accountGroup := router.Group("/api/account")
	{
		accountGroup.GET("/get", authWithAcc, getAccount(service, logger))
		accountGroup.GET("/search", authWithAcc, searchAccount(service, logger))
	}
}

// getAccount returns a handler which fetches the calling account's own data.
func getAccount(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		// Fetch username from context set by the auth middleware
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in get_account")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		acc, err := service.getaccount(gctx, username)
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
		gctx.JSON(http.StatusOK, gin.H{"account": acc})
	}
}

// searchAccount returns a handler which takes care of account search in Gatepass.
func searchAccount(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var query entity.AccountSearch
		query.Username = gctx.DefaultQuery("username", "")
		cursor, converr := strconv.Atoi(gctx.DefaultQuery("cursor", "0"))
		if converr != nil || cursor < 0 || cursor > 1000 {
			// Invalid cursor input
			gctx.Status(http.StatusBadRequest)
			return
		}
		query.Cursor = cursor

		response, newCursor, err := service.searchaccount(gctx, query)
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
		gctx.JSON(http.StatusOK, gin.H{
			"result": response,
			"page":   newCursor,
		})
	}
}
