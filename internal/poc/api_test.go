// API tests on the poc endpoints which don't need a live DB,
// requests are rejected by auth, role or validation checks first.

package poc

import (
	"Gatepass/internal/auth"
	"Gatepass/internal/entity"
	"Gatepass/internal/test"
	"Gatepass/pkg/log"
	"Gatepass/pkg/validations"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// Global instance of log.Logger to be used during poc API testing.
var logger log.Logger

// Global instance of gin MockRouter to be used during poc API testing.
var mockRouter *gin.Engine

// Sets up resources before testing poc APIs in Gatepass.
func setup() {
	// Initializing Resources before test run

	// Logger
	logger = log.New("test")

	// Custom validations
	validations.RegisterCustomValidations(context.Background(), logger)

	// Initializing router to test set of poc APIs
	mockRouter = test.MockRouter()
	service := NewService(nil, nil, logger)
	adminOnly := auth.RoleMiddleware(logger, entity.RoleAdmin)
	APIHandlers(mockRouter, service, test.MockAuthMiddleware(logger), adminOnly, logger)

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

func TestCreatePocUnauthenticated(t *testing.T) {
	body, _ := json.Marshal(entity.Poc{Code: "GATE-A", Name: "Main gate", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/poc/create",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusUnauthorized},
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCreatePocForbiddenForPoc(t *testing.T) {
	body, _ := json.Marshal(entity.Poc{Code: "GATE-A", Name: "Main gate", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/poc/create",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusForbidden},
		Cookies:      test.MockPocCookies("poc1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCreatePocInvalidBody(t *testing.T) {
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/poc/create",
		Body:         bytes.NewReader([]byte("not-a-json-payload")),
		WantResponse: []int{http.StatusUnprocessableEntity},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCreatePocValidationFailure(t *testing.T) {
	// Point code carries a slash which codeformat rejects
	body, _ := json.Marshal(entity.Poc{Code: "GATE/A", Name: "Main gate", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/poc/create",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusBadRequest},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestGetPocsMissingEventCode(t *testing.T) {
	request := test.RequestAPITest{
		Method:       http.MethodGet,
		Path:         "/api/poc/get_all",
		Body:         bytes.NewReader([]byte{}),
		WantResponse: []int{http.StatusBadRequest},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}
