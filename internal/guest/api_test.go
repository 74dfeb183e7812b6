// API tests on the guest endpoints which don't need a live DB,
// requests are rejected by auth, role or validation checks first.

package guest

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

// Global instance of log.Logger to be used during guest API testing.
var logger log.Logger

// Global instance of gin MockRouter to be used during guest API testing.
var mockRouter *gin.Engine

// Sets up resources before testing guest APIs in Gatepass.
func setup() {
	// Initializing Resources before test run

	// Logger
	logger = log.New("test")

	// Custom validations
	validations.RegisterCustomValidations(context.Background(), logger)

	// Initializing router to test set of guest APIs
	mockRouter = test.MockRouter()
	service := NewService(nil, nil, nil, logger)
	adminOnly := auth.RoleMiddleware(logger, entity.RoleAdmin)
	pocOnly := auth.RoleMiddleware(logger, entity.RolePoc)
	APIHandlers(mockRouter, service, test.MockAuthMiddleware(logger), adminOnly, pocOnly, logger)

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

func TestRegisterGuestUnauthenticated(t *testing.T) {
	body, _ := json.Marshal(entity.Guest{Code: "GUEST-1", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/register",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusUnauthorized},
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestRegisterGuestForbiddenForPoc(t *testing.T) {
	body, _ := json.Marshal(entity.Guest{Code: "GUEST-1", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/register",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusForbidden},
		Cookies:      test.MockPocCookies("poc1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestRegisterGuestValidationFailure(t *testing.T) {
	// Single-character guest code which codeformat rejects
	body, _ := json.Marshal(entity.Guest{Code: "g", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/register",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusBadRequest},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCheckinGuestForbiddenForAdmin(t *testing.T) {
	body, _ := json.Marshal(entity.GuestCheckin{GuestCode: "GUEST-1", EventCode: "EV-1", PointCode: "GATE-A"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/checkin",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusForbidden},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCheckinGuestInvalidBody(t *testing.T) {
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/checkin",
		Body:         bytes.NewReader([]byte("not-a-json-payload")),
		WantResponse: []int{http.StatusUnprocessableEntity},
		Cookies:      test.MockPocCookies("poc1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestCheckinGuestValidationFailure(t *testing.T) {
	// Point code is missing entirely
	body, _ := json.Marshal(entity.GuestCheckin{GuestCode: "GUEST-1", EventCode: "EV-1"})
	request := test.RequestAPITest{
		Method:       http.MethodPost,
		Path:         "/api/guest/checkin",
		Body:         bytes.NewReader(body),
		WantResponse: []int{http.StatusBadRequest},
		Cookies:      test.MockPocCookies("poc1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}

func TestGetGuestsMissingEventCode(t *testing.T) {
	request := test.RequestAPITest{
		Method:       http.MethodGet,
		Path:         "/api/guest/get_all",
		Body:         bytes.NewReader([]byte{}),
		WantResponse: []int{http.StatusBadRequest},
		Cookies:      test.MockAdminCookies("admin1"),
	}
	test.ExecuteAPITest(logger, t, mockRouter, request)
}
