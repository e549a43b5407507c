package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/kendall-kelly/estate-market-api/services"
	"github.com/kendall-kelly/estate-market-api/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseDriver:  "sqlite",
		DatabaseURL:     ":memory:",
		GoEnv:           "test",
		JWTSecret:       "controller-test-secret",
		JWTIssuer:       "estate-market-api",
		JWTAudience:     "estate-market-clients",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

// setupTestDB installs a fresh in-memory database, config, token store and
// mock image service as the globals the handlers read
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.NewTestDB(t)

	config.SetDB(db)
	config.SetConfig(testConfig())
	services.SetTokenStore(services.NewMemoryTokenStore())
	services.NewMockImageService().SetAsMockForTesting()

	t.Cleanup(func() {
		config.SetDB(nil)
		services.SetImageService(nil)
	})
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware sets up the context exactly as EnsureValidToken does
// for an access token belonging to userID
func mockAuthMiddleware(userID uint, username string) gin.HandlerFunc {
	return testutil.MockAuthMiddleware(userID, username)
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestProperty(t *testing.T, db *gorm.DB, seller models.User, name string) models.Property {
	t.Helper()

	property := models.Property{
		SellerID:     seller.ID,
		Name:         name,
		Location:     "Pune",
		Description:  "A test listing",
		Price:        250000,
		PropertyType: "rent",
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

// envelope is the decoded response body shared by every endpoint
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func performRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}
