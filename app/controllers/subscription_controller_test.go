package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathcraft-app/pathcraft/app/models"
	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
)

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}, authed bool) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("X-Test-User", "1")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestCreateSubscriptionRequiresAuth(t *testing.T) {
	app := newTestApp(newStubRepository())

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions", fiber.Map{
		"tier":         "navigator",
		"billingCycle": "monthly",
	}, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])
}

func TestCreateSubscriptionInvalidBody(t *testing.T) {
	app := newTestApp(newStubRepository())

	req := httptest.NewRequest("POST", "/api/v1/subscriptions", bytes.NewReader([]byte(`{"tier": `)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "1")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateSubscriptionMissingFields(t *testing.T) {
	app := newTestApp(newStubRepository())

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions", fiber.Map{
		"tier": "navigator",
	}, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, billing.CodeValidationError, errObj["code"])
}

func TestCreateSubscriptionSuccessResponse(t *testing.T) {
	repo := newStubRepository()
	repo.planMappings["navigator|monthly"] = &models.PlanMapping{
		Tier:           "navigator",
		BillingCycle:   "monthly",
		RazorpayPlanID: "plan_nav_m",
		PlanName:       "Navigator",
		PriceCents:     49900,
		Currency:       "INR",
		IsActive:       true,
	}
	app := newTestApp(repo)

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions", fiber.Map{
		"tier":         "navigator",
		"billingCycle": "monthly",
	}, true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	sub, ok := data["subscription"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "navigator", sub["tier"])
	assert.Equal(t, "created", sub["status"])
	assert.Equal(t, "https://rzp.io/i/stub", sub["short_url"])

	// Persisted under the processor-assigned external id.
	assert.NotNil(t, repo.subscriptions["sub_stub"])
}

func TestCreateSubscriptionPlanNotConfigured(t *testing.T) {
	app := newTestApp(newStubRepository())

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions", fiber.Map{
		"tier":         "navigator",
		"billingCycle": "monthly",
	}, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, billing.CodePlanNotConfigured, errObj["code"])
}

func TestCreateSubscriptionDuplicateDetails(t *testing.T) {
	repo := newStubRepository()
	repo.planMappings["navigator|monthly"] = &models.PlanMapping{
		Tier: "navigator", BillingCycle: "monthly", RazorpayPlanID: "plan_nav_m", IsActive: true,
	}
	repo.subscriptions["sub_existing"] = &models.Subscription{
		UserID:                 7,
		RazorpaySubscriptionID: "sub_existing",
		Tier:                   "navigator",
		TierFamily:             "individual",
		Status:                 models.SubscriptionStatusActive,
	}
	app := newTestApp(repo)

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions", fiber.Map{
		"tier":         "navigator",
		"billingCycle": "monthly",
	}, true)
	assert.Equal(t, fiber.StatusBadRequest, status)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, billing.CodeDuplicateSubscription, errObj["code"])

	details, ok := errObj["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "navigator", details["existingTier"])
	assert.Equal(t, []interface{}{"voyager"}, details["upgradeOptions"])
}

func TestListSubscriptions(t *testing.T) {
	repo := newStubRepository()
	repo.subscriptions["sub_a"] = &models.Subscription{
		UUID:                   "uuid-a",
		UserID:                 7,
		RazorpaySubscriptionID: "sub_a",
		Tier:                   "navigator",
		Status:                 models.SubscriptionStatusActive,
	}
	repo.subscriptions["sub_other"] = &models.Subscription{
		UUID:                   "uuid-other",
		UserID:                 99,
		RazorpaySubscriptionID: "sub_other",
		Tier:                   "voyager",
		Status:                 models.SubscriptionStatusActive,
	}
	app := newTestApp(repo)

	status, body := doJSON(t, app, "GET", "/api/v1/users/me/subscriptions", nil, true)
	require.Equal(t, fiber.StatusOK, status)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	subs, ok := data["subscriptions"].([]interface{})
	require.True(t, ok)
	require.Len(t, subs, 1)
	assert.Equal(t, "uuid-a", subs[0].(map[string]interface{})["id"])
}

func TestListSubscriptionsRequiresAuth(t *testing.T) {
	app := newTestApp(newStubRepository())

	status, _ := doJSON(t, app, "GET", "/api/v1/users/me/subscriptions", nil, false)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCancelSubscriptionEndpoint(t *testing.T) {
	repo := newStubRepository()
	repo.subscriptions["sub_a"] = &models.Subscription{
		UUID:                   "uuid-a",
		UserID:                 7,
		RazorpaySubscriptionID: "sub_a",
		Tier:                   "navigator",
		TierFamily:             "individual",
		Status:                 models.SubscriptionStatusActive,
	}
	app := newTestApp(repo)

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions/uuid-a/cancel", nil, true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, models.SubscriptionStatusCancelled, repo.subscriptions["sub_a"].Status)
}

func TestCancelSubscriptionNotFoundEndpoint(t *testing.T) {
	app := newTestApp(newStubRepository())

	status, body := doJSON(t, app, "POST", "/api/v1/subscriptions/nope/cancel", nil, true)
	assert.Equal(t, fiber.StatusNotFound, status)
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, billing.CodeNotFound, errObj["code"])
}

func TestCreateSubscriptionGETNotAllowed(t *testing.T) {
	app := newTestApp(newStubRepository())

	req := httptest.NewRequest("GET", "/api/v1/subscriptions", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)
}
