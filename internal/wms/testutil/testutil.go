package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-wms/internal/wms/handler"
	"github.com/bitfantasy/nimo-wms/internal/wms/notify"
	"github.com/bitfantasy/nimo-wms/internal/wms/repository"
	"github.com/bitfantasy/nimo-wms/internal/wms/service"
)

const JWTSecret = "nimo-wms-jwt-secret-key-2025"

// SetupRouter wires a full WMS router backed by the in-memory repository set.
// Returns the router plus the set so tests can inspect state directly.
func SetupRouter() (*gin.Engine, *repository.MemorySet) {
	gin.SetMode(gin.TestMode)

	set := repository.NewMemorySet()
	logger := zap.NewNop()
	hub := notify.NewHub(logger)
	services := service.NewServices(set, notify.Nop{}, logger)
	handlers := handler.NewHandlers(services, hub)

	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r, handlers, JWTSecret)
	return r, set
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"roles": roles,
		"iss":   "nimo-wms",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default test operator
func DefaultTestToken() string {
	return GenerateTestToken("test-operator-001", "Test Operator", []string{"wms_admin"})
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
