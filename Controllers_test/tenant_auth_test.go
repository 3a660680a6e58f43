package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/controllers"
	"github.com/comandapos/comanda-app/middlewares"
)

// setupAuthRouter wires the real middleware chain: provisioning is
// public, login is tenant-resolved, profile requires a valid token.
func setupAuthRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	tenantCtrl := controllers.NewTenantController(db)
	userCtrl := controllers.NewUserController(db)

	router.POST("/tenants", tenantCtrl.ProvisionTenant)
	router.POST("/login", middlewares.TenantResolver(), userCtrl.Login)

	api := router.Group("/")
	api.Use(middlewares.AuthMiddleware())
	api.Use(middlewares.TenantResolver())
	api.GET("/profile", userCtrl.GetProfile)
	return router
}

func TestProvisionLoginProfileFlow(t *testing.T) {
	db := setupTestDB(t)
	router := setupAuthRouter(db)

	w := doJSON(t, router, "POST", "/tenants", map[string]interface{}{
		"name":            "Bistro Central",
		"subdomain":       "bistro",
		"admin_email":     "owner@bistro.com",
		"admin_password":  "supersecret",
		"admin_full_name": "Bistro Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	tenantID := data["tenant"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, tenantID)

	// Login resolves the tenant from the header; no token exists yet.
	payload, err := json.Marshal(map[string]interface{}{
		"email":    "owner@bistro.com",
		"password": "supersecret",
	})
	require.NoError(t, err)
	req, err := http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	token := decodeResponse(t, w)["data"].(map[string]interface{})["token"].(string)
	require.NotEmpty(t, token)

	// The token alone carries the tenant; no header needed anymore.
	req, err = http.NewRequest("GET", "/profile", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "owner@bistro.com", profile["email"])
	assert.Equal(t, "admin", profile["role"])
	assert.Equal(t, tenantID, profile["tenant_id"])
}

func TestLoginWithoutResolvableTenantFails(t *testing.T) {
	db := setupTestDB(t)
	router := setupAuthRouter(db)

	payload, err := json.Marshal(map[string]interface{}{
		"email":    "owner@bistro.com",
		"password": "supersecret",
	})
	require.NoError(t, err)
	req, err := http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Host = "localhost:8080"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWithWrongPasswordFails(t *testing.T) {
	db := setupTestDB(t)
	router := setupAuthRouter(db)

	w := doJSON(t, router, "POST", "/tenants", map[string]interface{}{
		"name":            "Bistro Central",
		"subdomain":       "bistro",
		"admin_email":     "owner@bistro.com",
		"admin_password":  "supersecret",
		"admin_full_name": "Bistro Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tenantID := decodeResponse(t, w)["data"].(map[string]interface{})["tenant"].(map[string]interface{})["id"].(string)

	payload, err := json.Marshal(map[string]interface{}{
		"email":    "owner@bistro.com",
		"password": "wrongpassword",
	})
	require.NoError(t, err)
	req, err := http.NewRequest("POST", "/login", bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProvisionDuplicateSubdomainRejected(t *testing.T) {
	db := setupTestDB(t)
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"name":            "Bistro Central",
		"subdomain":       "bistro",
		"admin_email":     "owner@bistro.com",
		"admin_password":  "supersecret",
		"admin_full_name": "Bistro Owner",
	}
	w := doJSON(t, router, "POST", "/tenants", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/tenants", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}
