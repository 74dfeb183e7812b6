// Exposes all of the REST APIs related to Authentication in Gatepass.

package auth

import (
	"Gatepass/internal/entity"
	"Gatepass/internal/errors"
	"Gatepass/pkg/log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Registers all of the REST API handlers related to internal package auth onto the gin server.
func APIHandlers(router *gin.Engine, service Service, authWithAcc gin.HandlerFunc, authWithRef gin.HandlerFunc, logger log.Logger) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", register(service, logger))
		authGroup.POST("/login", login(service, logger))
		authGroup.POST("/logout", authWithAcc, logout(service, logger))
		authGroup.POST("/refresh_token", authWithRef, refreshToken(service, logger))
	}
}

// register returns a handler which takes care of account registration in Gatepass.
func register(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var acc entity.Account

		// Serialize received data into Account struct
		if binderr := gctx.BindJSON(&acc); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Account struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		// Apply the service logic for account registration in Gatepass
		token, err := service.register(gctx, acc)
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
		setTokenCookies(gctx, token)
		gctx.JSON(http.StatusOK, token)
	}
}

// login returns a handler which takes care of account login in Gatepass.
func login(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		var acc entity.Account

		// Serialize received data into Account struct
		if binderr := gctx.BindJSON(&acc); binderr != nil {
			// Error occured during serialization
			logger.WithCtx(gctx).Error().Err(binderr).Msg("Binding error occured with Account struct.")
			gctx.JSON(http.StatusUnprocessableEntity, errors.UnprocessableEntity(""))
			return
		}

		token, err := service.login(gctx, acc)
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
		setTokenCookies(gctx, token)
		gctx.JSON(http.StatusOK, token)
	}
}

// logout returns a handler which deletes the access token of the calling account.
func logout(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		accessTokenUUID, ok := gctx.Value("access_token").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in logout")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		err := service.logout(gctx, accessTokenUUID)
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
		// Expire the token cookies on the client
		gctx.SetCookie("access_token", "", -1, "/", os.Getenv("COOKIE_DOMAIN"), false, true)
		gctx.SetCookie("refresh_token", "", -1, "/", os.Getenv("COOKIE_DOMAIN"), false, true)
		gctx.Status(http.StatusOK)
	}
}

// refreshToken returns a handler which rotates the refresh token and issues a fresh pair.
func refreshToken(service Service, logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		username, ok := gctx.Value("Username").(string)
		if !ok {
			// Type assertion error
			logger.WithCtx(gctx).Error().Msg("Type assertion error in refresh_token")
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		role, ok := gctx.Value("Role").(string)
		if !ok {
			// Type assertion error
			gctx.JSON(http.StatusInternalServerError, errors.InternalServerError(""))
			return
		}
		token, err := service.refreshToken(gctx, username, role)
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
		setTokenCookies(gctx, token)
		gctx.JSON(http.StatusOK, token)
	}
}

// Helper to attach freshly issued tokens as HttpOnly cookies.
func setTokenCookies(gctx *gin.Context, token map[string]string) {
	domain := os.Getenv("COOKIE_DOMAIN")
	gctx.SetCookie("access_token", token["access_token"], 60*30, "/", domain, false, true)
	gctx.SetCookie("refresh_token", token["refresh_token"], 60*60*24*7, "/", domain, false, true)
}
