// Mock methods required in Gatepass tests are all here.

package test

import (
	"Gatepass/internal/entity"
	"Gatepass/pkg/log"
	"Gatepass/pkg/middlewares"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
)

// Global instance of gin MockRouter to be used during API testing.
var testRouter *gin.Engine

// Singleton to make sure testRouter is initialized only once.
var once sync.Once

func MockRouter() *gin.Engine {
	once.Do(func() {
		// Initializing the gin test server
		ginMode := os.Getenv("GIN_MODE")
		if ginMode == "" {
			ginMode = gin.TestMode
		}
		gin.SetMode(ginMode)
		testRouter = gin.New()
		testRouter.Use(middlewares.CORSMiddleware("*")) // CORS middleware which allows request from all origin
	})
	return testRouter
}

// Cookie to be used in tests to bypass MockAuthMiddleware
var MockAuthAllowCookie *http.Cookie = &http.Cookie{
	Name:     "mode",
	Value:    "test",
	HttpOnly: true,
}

// MockAuthMiddleware replaces the JWT middleware during tests.
// Identity comes from plain "user" and "role" cookies instead of signed tokens.
func MockAuthMiddleware(logger log.Logger) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		token, err := gctx.Request.Cookie("mode")
		if err != nil {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		} else if token.Value != "test" {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		user, err := gctx.Request.Cookie("user")
		if err != nil {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		role, err := gctx.Request.Cookie("role")
		if err != nil {
			gctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		// Set identity in request's context
		// This pair will be used further down in the handler chain
		gctx.Set("Username", user.Value)
		gctx.Set("Role", role.Value)
		gctx.Next()
	}
}

// Cookies identifying a test admin account to MockAuthMiddleware.
func MockAdminCookies(username string) []*http.Cookie {
	return mockIdentityCookies(username, entity.RoleAdmin)
}

// Cookies identifying a test POC account to MockAuthMiddleware.
func MockPocCookies(username string) []*http.Cookie {
	return mockIdentityCookies(username, entity.RolePoc)
}

func mockIdentityCookies(username string, role string) []*http.Cookie {
	return []*http.Cookie{
		MockAuthAllowCookie,
		{Name: "user", Value: username, HttpOnly: true},
		{Name: "role", Value: role, HttpOnly: true},
	}
}
