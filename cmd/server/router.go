// Contains all of the routes to be used by the Gatepass server.

package main

import (
	"Gatepass/internal/account"
	"Gatepass/internal/auth"
	"Gatepass/internal/entity"
	"Gatepass/internal/event"
	"Gatepass/internal/guest"
	"Gatepass/internal/poc"
	"Gatepass/internal/realtime"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Router uses the given gin server to manage all of the REST API groups of Gatepass.
func Router(server *gin.Engine, dbConnWrp *db.RedisDB, gateway *realtime.Gateway, logger log.Logger) {
	server.GET("/", func(gctx *gin.Context) {
		gctx.String(http.StatusOK, "Welcome to Gatepass!")
	})

	// Repositories of every collaborator package share the same Redis connection
	accountRepo := account.NewRepository(dbConnWrp)
	authRepo := auth.NewRepository(dbConnWrp)
	eventRepo := event.NewRepository(dbConnWrp)
	pocRepo := poc.NewRepository(dbConnWrp)
	guestRepo := guest.NewRepository(dbConnWrp)

	accountService := account.NewService(accountRepo, logger)
	authService := auth.NewService(os.Getenv("ACCESS_SECRET"), os.Getenv("REFRESH_SECRET"), accountRepo, authRepo, logger)
	eventService := event.NewService(eventRepo, logger)
	pocService := poc.NewService(pocRepo, eventRepo, logger)
	guestService := guest.NewService(guestRepo, eventRepo, pocRepo, logger)

	// Middleware chain guarding every protected route
	authWithAcc := auth.AuthMiddleware(logger, authRepo, "access_token", os.Getenv("ACCESS_SECRET"))
	authWithRef := auth.AuthMiddleware(logger, authRepo, "refresh_token", os.Getenv("REFRESH_SECRET"))
	adminOnly := auth.RoleMiddleware(logger, entity.RoleAdmin)
	pocOnly := auth.RoleMiddleware(logger, entity.RolePoc)

	auth.APIHandlers(server, authService, authWithAcc, authWithRef, logger)
	account.APIHandlers(server, accountService, authWithAcc, logger)
	event.APIHandlers(server, eventService, authWithAcc, adminOnly, logger)
	poc.APIHandlers(server, pocService, authWithAcc, adminOnly, logger)
	guest.APIHandlers(server, guestService, authWithAcc, adminOnly, pocOnly, logger)
	realtime.APIHandlers(server, gateway, authWithAcc, logger)
}
