// The main file of Gatepass.

package main

import (
	"Gatepass/internal/config"
	"Gatepass/internal/realtime"
	"Gatepass/pkg/cleanup"
	"Gatepass/pkg/db"
	"Gatepass/pkg/log"
	"Gatepass/pkg/middlewares"
	"Gatepass/pkg/validations"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Indicates the current version of Gatepass.
var Version = "1.0.0"

func main() {
	ctx := context.Background()

	// Fetching env configuration, dev environments load it from config/dev.env
	if len(os.Getenv("ENV")) == 0 {
		config.LoadDevConfig()
	}

	logger := log.New(Version)
	logger.Info().Msg(fmt.Sprintf("Welcome to Gatepass: v%s", Version))
	logger.Info().Msg(fmt.Sprintf("Gatepass Environment: %s", os.Getenv("ENV")))

	// Opening a connection to the DB and checking its status with a PING request
	dbConnWrp, dberr := db.NewDbConnection(ctx, logger)
	if dberr != nil {
		logger.Fatal().Err(dberr).Msg("Couldn't initialize the DB connection.")
	}
	if cnterr := dbConnWrp.CheckDbConnection(ctx, logger); cnterr != nil {
		logger.Fatal().Err(cnterr).Msg("Redis client couldn't PING the redis-server.")
	}

	// Custom govalidator tags used by entity validation all over Gatepass
	validations.RegisterCustomValidations(ctx, logger)

	// This is the preferred mode used by gin server in DEV environment
	if os.Getenv("ENV") == "DEV" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initializing the gin server
	server := gin.New()
	// Forcing gin to use custom Logger instead of the default one
	server.Use(log.LoggerGinExtension(logger))
	server.Use(middlewares.CORSMiddleware(os.Getenv("FRONTEND_ADDR")))
	server.Use(middlewares.CorrelationMiddleware(logger))
	server.Use(gin.Recovery())

	// Liveness window and sweep interval of the realtime subsystem.
	// The window is sized larger than the POC heartbeat period to tolerate a missed beat.
	window := envSeconds(logger, "LIVENESS_WINDOW", 60)
	sweepInterval := envSeconds(logger, "SWEEP_INTERVAL", 30)

	// Realtime core: connection table, admin registry, heartbeat store, sweep task.
	// Constructed once here and shared by the gateway and the sweep.
	registry := realtime.NewRegistry()
	table := realtime.NewTable()
	heartbeatRepo := realtime.NewRepository(dbConnWrp, 4*window)
	rtService := realtime.NewService(registry, heartbeatRepo, table, window, logger)
	gateway := realtime.NewGateway(table, registry, rtService, logger)
	sweep := realtime.NewSweep(sweepInterval, registry, heartbeatRepo, table, logger)

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	go sweep.Run(sweepCtx)

	// Routing all of the REST API groups and the websocket endpoint
	Router(server, dbConnWrp, gateway, logger)

	// Running the server with defined addr and port
	srvaddr, srvport := os.Getenv("SRV_ADDR"), os.Getenv("SRV_PORT")
	srv := &http.Server{
		Addr:    srvaddr + ":" + srvport,
		Handler: server,
	}

	// ListenAndServe is a blocking operation, putting it a goroutine
	go func() {
		logger.Info().Msg(fmt.Sprintf("Gatepass service running at: %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Error in ListenAndServe()")
		}
	}()

	// Graceful shutdown of Gatepass server triggered due to system interruptions
	wait := cleanup.GracefulShutdown(ctx, logger, 5*time.Second, map[string]cleanup.Operation{
		"Liveness-sweep": func(ctx context.Context) error {
			cancelSweep()
			sweep.Stop()
			return nil
		},
		"Redis-server": func(ctx context.Context) error {
			return dbConnWrp.CloseDbConnection(ctx)
		},
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	<-wait
}

// Helper to read a duration-in-seconds env variable with a fallback default.
func envSeconds(logger log.Logger, key string, fallback int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * time.Second
	}
	secs, prserr := strconv.Atoi(raw)
	if prserr != nil || secs <= 0 {
		logger.Fatal().Err(prserr).Msg("Couldn't parse ENV: " + key)
	}
	return time.Duration(secs) * time.Second
}
