package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shamba-backend/internal/database"
	"shamba-backend/internal/store"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	st := store.New(db, nil)

	app := fiber.New()
	Register(app.Group("/farmers"), st.Farmers)
	Register(app.Group("/contracts"), st.Contracts)
	app.Patch("/contracts/:id/fulfillment", PatchField(st.Contracts, "fulfillmentPercent"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "expected an object in data, got %T", body["data"])
	return d
}

func TestCRUDRoundTrip(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/farmers", map[string]interface{}{
		"name": "Wanjiku", "region": "Narok",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", body["status"])
	created := data(t, body)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "low", created["riskLevel"])

	status, body = doJSON(t, app, http.MethodGet, "/farmers/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Wanjiku", data(t, body)["name"])

	// partial update leaves absent fields alone
	status, body = doJSON(t, app, http.MethodPut, "/farmers/1", map[string]interface{}{"region": "Nakuru"})
	require.Equal(t, http.StatusOK, status)
	updated := data(t, body)
	assert.Equal(t, "Wanjiku", updated["name"])
	assert.Equal(t, "Nakuru", updated["region"])

	status, body = doJSON(t, app, http.MethodGet, "/farmers", nil)
	require.Equal(t, http.StatusOK, status)
	list, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)

	status, body = doJSON(t, app, http.MethodDelete, "/farmers/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Wanjiku", data(t, body)["name"], "delete returns the removed record")

	status, _ = doJSON(t, app, http.MethodGet, "/farmers/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreate_MissingRequiredFieldIs400(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/farmers", map[string]interface{}{"region": "Narok"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errObj["message"], "name")
}

func TestUnknownRecordAndBadID(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, http.MethodPut, "/farmers/42", map[string]interface{}{"region": "Narok"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, "/farmers/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPatchFulfillment(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/contracts", map[string]interface{}{
		"supplierName": "Narok Growers Co-op", "contractedQuantity": 100,
	})
	require.Equal(t, http.StatusCreated, status)
	id := data(t, body)["id"].(float64)

	status, body = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/contracts/%.0f/fulfillment", id), map[string]interface{}{"value": 45})
	require.Equal(t, http.StatusOK, status)
	patched := data(t, body)
	assert.Equal(t, float64(45), patched["fulfillmentPercent"])
	assert.Equal(t, float64(100), patched["contractedQuantity"])

	status, _ = doJSON(t, app, http.MethodPatch, "/contracts/1/fulfillment", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status, "missing value field")
}
