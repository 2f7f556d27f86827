package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"hubledger/internal/middleware"
	appvalidator "hubledger/internal/validator"
)

const (
	testHubID      = "0190c2a4-7b1e-7c3a-9f7e-000000000001"
	testAccountID  = "0190c2a4-7b1e-7c3a-9f7e-000000000002"
	testTemplateID = "0190c2a4-7b1e-7c3a-9f7e-000000000003"
	testBudgetID   = "0190c2a4-7b1e-7c3a-9f7e-000000000004"
	testCategoryID = "0190c2a4-7b1e-7c3a-9f7e-000000000005"
)

func init() {
	gin.SetMode(gin.TestMode)
	appvalidator.Register()
}

// hubRouter returns an engine with a /hubs/:hubID group behind HubScope.
func hubRouter() (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	return r, r.Group("/hubs/:hubID", middleware.HubScope())
}

func hubPath(suffix string) string {
	return "/hubs/" + testHubID + suffix
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return doRequestWithHeaders(r, method, path, body, nil)
}

func doRequestWithHeaders(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
