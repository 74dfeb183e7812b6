// Graceful shutdown tests in Gatepass.

package cleanup

import (
	"Gatepass/pkg/log"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during cleanup testing.
var logger log.Logger

// Global instance of gin router to be used during cleanup testing.
var mockRouter *gin.Engine

// Server under test.
var srv *http.Server

// Listener bound to an ephemeral port for srv.
var listener net.Listener

// Global context
var ctx context.Context = context.Background()

// Helper to build up a mock router instance for testing Gatepass.
func setupMockRouter() {
	gin.SetMode(gin.TestMode)
	mockRouter = gin.New()
	mockRouter.GET("/api", func(gctx *gin.Context) {
		gctx.Status(http.StatusOK)
	})
}

// Sets up resources before testing graceful shutdown in Gatepass.
func setup() {
	// Initializing Resources before test run

	// Logger
	logger = log.New("test")

	// Initializing router
	setupMockRouter()

	// Bind to an ephemeral port so the test never collides with a running server
	var lerr error
	listener, lerr = net.Listen("tcp", "127.0.0.1:0")
	if lerr != nil {
		// Couldn't bind, abort test run immediately
		os.Exit(4)
	}
	srv = &http.Server{Handler: mockRouter}

	logger.Info().Msg("Test resources setup successful.")
}

func TestMain(m *testing.M) {
	// Setting up Resources
	setup()
	// Running the tests
	testExitCode := m.Run()
	// Exit
	os.Exit(testExitCode)
}

func TestGracefulShutdownSIGINT(t *testing.T) {
	// Serve is a blocking operation, putting it a goroutine
	go func() {
		logger.Info().Msg(fmt.Sprintf("Gatepass test service running at: %s", listener.Addr().String()))
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Error in Serve()")
		}
	}()
	// Send SIGINT signal to test graceful shutdown
	go func(logger log.Logger) {
		time.Sleep(100 * time.Millisecond)
		logger.Info().Msg("Sending SIGINT signal")
		syscall.Kill(syscall.Getpid(), syscall.SIGINT)
	}(logger)

	// Graceful shutdown of Gatepass server triggered due to system interruptions
	wait := GracefulShutdown(ctx, logger, 5*time.Second, map[string]Operation{
		"Gin": func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
	<-wait

	_, testerr := http.Get(fmt.Sprintf("http://%s/api", listener.Addr().String()))
	assert.True(t, testerr != nil)
}
