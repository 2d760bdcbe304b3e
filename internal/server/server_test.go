package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"finsight/internal/config"
	"finsight/internal/events"
	"finsight/internal/middleware"
	"finsight/internal/models"
	"finsight/internal/plaid"
	"finsight/internal/testutil"
	"finsight/internal/validator"
)

const (
	testSecret = "integration-secret"
	testAPIKey = "pipeline-key"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// fakePlaid serves transactions/sync in two pages followed by an empty
// steady state, and a fixed accounts/get response.
type fakePlaid struct {
	mu      sync.Mutex
	cursors []string
}

var plaidPages = map[string]string{
	"": `{"added":[
		{"transaction_id":"tx-uber","account_id":"acc-checking","iso_currency_code":"USD","payment_channel":"online","amount":12.50,"name":"UBER TRIP","date":"2024-03-05","pending":false,"category":["Travel","Taxi"]},
		{"transaction_id":"tx-pay","account_id":"acc-checking","iso_currency_code":"USD","payment_channel":"online","amount":-1000,"name":"Payroll","date":"2024-03-15","pending":false,"category":["Income"]},
		{"transaction_id":"tx-pending","account_id":"acc-checking","iso_currency_code":"USD","payment_channel":"online","amount":3,"name":"Pending","date":"2024-03-16","pending":true,"category":["Food"]}
	],"modified":[],"removed":[],"next_cursor":"c1","has_more":true,"request_id":"req-0"}`,
	"c1": `{"added":[
		{"transaction_id":"tx-coffee","account_id":"acc-card","iso_currency_code":"USD","payment_channel":"in store","amount":4.25,"name":"Corner Coffee","date":"2024-03-20","pending":false,"category":["Food and Drink","Coffee Shop"]}
	],"modified":[],"removed":[],"next_cursor":"c2","has_more":false,"request_id":"req-1"}`,
	"c2": `{"added":[],"modified":[],"removed":[],"next_cursor":"c2","has_more":false,"request_id":"req-1"}`,
}

const plaidAccounts = `{"accounts":[
	{"account_id":"acc-checking","name":"Checking","type":"depository","balances":{"available":500,"current":500,"iso_currency_code":"USD"}},
	{"account_id":"acc-card","name":"Card","type":"credit","balances":{"available":null,"current":120,"iso_currency_code":"USD"}}
],"request_id":"req-acc"}`

func (f *fakePlaid) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/accounts/get":
		_, _ = w.Write([]byte(plaidAccounts))
	case "/transactions/sync":
		var body struct {
			Cursor string `json:"cursor"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.cursors = append(f.cursors, body.Cursor)
		f.mu.Unlock()
		page, ok := plaidPages[body.Cursor]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_type":"INVALID_INPUT","error_code":"INVALID_CURSOR","error_message":"unknown cursor"}`))
			return
		}
		_, _ = w.Write([]byte(page))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePlaid) seenCursors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cursors...)
}

type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Feed   *fakePlaid
	User   *models.User
	Token  string
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	feed := &fakePlaid{}
	srv := httptest.NewServer(feed)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		SyncPageSize:        100,
		SyncStalenessWindow: time.Hour,
		SyncUserConcurrency: 2,
		UpsertBatchSize:     2,
		UpsertConcurrency:   2,
		AccountCacheTTL:     time.Minute,
		CostCategories:      config.DefaultCostCategories,
		IncomeCategories:    config.DefaultIncomeCategories,
	}
	clients := plaid.Clients{
		models.ItemEnvironmentSandbox: plaid.NewClient(srv.URL, "client-id", "secret", srv.Client()),
	}
	hub := events.NewHub(8)
	svc := NewServices(db, cfg, clients, hub)
	router := NewRouter(svc, hub, Options{JWTSecret: testSecret, PipelineAPIKeys: []string{testAPIKey}})

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestItem(t, db, user.ID, models.ItemEnvironmentSandbox)

	return &testApp{DB: db, Router: router, Feed: feed, User: user, Token: signToken(t, user)}
}

func signToken(t *testing.T, user *models.User) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (app *testApp) request(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) authed(method, path, body string) *httptest.ResponseRecorder {
	return app.request(method, path, body, map[string]string{"Authorization": "Bearer " + app.Token})
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
}

func TestSyncFlow_RulesSyncEditAndSummarize(t *testing.T) {
	app := setupApp(t)

	// Rules are applied at ingestion, so create one before the first sync.
	rec := app.authed("POST", "/api/v1/rules",
		`{"serial":0,"name":"coffee","new_category":"Food","new_subcategory":"Coffee"}`)
	expectStatus(t, rec, http.StatusCreated)

	rec = app.authed("POST", "/api/v1/sync", "")
	expectStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)["sync"].(map[string]interface{})
	if result["added"] != float64(4) {
		t.Errorf("expected 4 added, got %v", result["added"])
	}
	if result["net_worth"] != "380" {
		t.Errorf("expected net worth 380, got %v", result["net_worth"])
	}
	if got := app.Feed.seenCursors(); len(got) != 2 || got[0] != "" || got[1] != "c1" {
		t.Errorf("unexpected cursor sequence: %v", got)
	}

	// A second sync resumes from the stored cursor and finds nothing new.
	rec = app.authed("POST", "/api/v1/sync", "")
	expectStatus(t, rec, http.StatusOK)
	if added := parseJSON(t, rec)["sync"].(map[string]interface{})["added"]; added != float64(0) {
		t.Errorf("expected 0 added on resync, got %v", added)
	}
	if got := app.Feed.seenCursors(); got[len(got)-1] != "c2" {
		t.Errorf("expected resync from c2, got %v", got)
	}

	rec = app.authed("GET", "/api/v1/transactions?include_marked=true", "")
	expectStatus(t, rec, http.StatusOK)
	if total := parseJSON(t, rec)["total_items"]; total != float64(3) {
		t.Errorf("expected pending row to be skipped, got %v rows", total)
	}

	rec = app.authed("GET", "/api/v1/transactions?category=Food", "")
	expectStatus(t, rec, http.StatusOK)
	page := parseJSON(t, rec)
	if page["total_items"] != float64(1) {
		t.Fatalf("expected 1 Food transaction, got %v", page["total_items"])
	}
	coffee := page["data"].([]interface{})[0].(map[string]interface{})
	if coffee["subcategory"] != "Coffee" || coffee["original_category"] != "Food and Drink" {
		t.Errorf("rule not applied as expected: %v", coffee)
	}

	rec = app.authed("GET", "/api/v1/summaries/monthly?from=2024-03&to=2024-03", "")
	expectStatus(t, rec, http.StatusOK)
	march := parseJSON(t, rec)["months"].(map[string]interface{})["Mar 2024"].(map[string]interface{})
	if total := march["Food"].(map[string]interface{})["total"]; total != "4.25" {
		t.Errorf("expected Food 4.25, got %v", total)
	}
	if total := march["Travel"].(map[string]interface{})["total"]; total != "12.5" {
		t.Errorf("expected Travel 12.5, got %v", total)
	}
	if total := march["Income"].(map[string]interface{})["total"]; total != "1000" {
		t.Errorf("expected Income 1000, got %v", total)
	}

	// Marking the ride hides it from the summary.
	rec = app.authed("GET", "/api/v1/transactions?search=uber", "")
	expectStatus(t, rec, http.StatusOK)
	uber := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})
	rec = app.authed("POST", fmt.Sprintf("/api/v1/transactions/%.0f/mark-delete", uber["id"].(float64)), "")
	expectStatus(t, rec, http.StatusOK)

	rec = app.authed("GET", "/api/v1/summaries/monthly?from=2024-03&to=2024-03", "")
	expectStatus(t, rec, http.StatusOK)
	march = parseJSON(t, rec)["months"].(map[string]interface{})["Mar 2024"].(map[string]interface{})
	if _, ok := march["Travel"]; ok {
		t.Error("expected marked transaction to be excluded from the summary")
	}

	rec = app.authed("GET", "/api/v1/audit-logs?resource_type=transaction", "")
	expectStatus(t, rec, http.StatusOK)
	trail := parseJSON(t, rec)["data"].([]interface{})
	if len(trail) != 1 || trail[0].(map[string]interface{})["action"] != "MARK_DELETE_TRANSACTION" {
		t.Errorf("expected the mark-delete in the audit trail, got %v", trail)
	}

	rec = app.authed("GET", "/api/v1/transactions/export", "")
	expectStatus(t, rec, http.StatusOK)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 unmarked rows, got %q", rec.Body.String())
	}
	if !strings.HasPrefix(lines[1], "2024-03-15,Payroll,Income,") || !strings.HasPrefix(lines[2], "2024-03-20,Corner Coffee,Food,Coffee,4.25,") {
		t.Errorf("unexpected export rows: %q", lines[1:])
	}

	rec = app.authed("GET", "/api/v1/net-worth", "")
	expectStatus(t, rec, http.StatusOK)
	worth := parseJSON(t, rec)
	if worth["assets"] != "500" || worth["liabilities"] != "120" {
		t.Errorf("unexpected net worth breakdown: %v", worth)
	}
}

func TestSyncFlow_ManualEditSurvivesResync(t *testing.T) {
	app := setupApp(t)

	expectStatus(t, app.authed("POST", "/api/v1/sync", ""), http.StatusOK)

	rec := app.authed("GET", "/api/v1/transactions?search=payroll", "")
	expectStatus(t, rec, http.StatusOK)
	payroll := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})
	path := fmt.Sprintf("/api/v1/transactions/%.0f", payroll["id"].(float64))

	rec = app.authed("PUT", path, `{"name":"Salary"}`)
	expectStatus(t, rec, http.StatusOK)

	// Replay history from scratch so the feed reports every row again.
	if err := app.DB.Model(&models.Item{}).Where("user_id = ?", app.User.ID).Update("cursor", "").Error; err != nil {
		t.Fatalf("failed to reset cursor: %v", err)
	}
	expectStatus(t, app.authed("POST", "/api/v1/sync", ""), http.StatusOK)

	rec = app.authed("GET", path, "")
	expectStatus(t, rec, http.StatusOK)
	tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
	if tx["name"] != "Salary" {
		t.Errorf("expected manual name to survive, got %v", tx["name"])
	}
	if tx["original_name"] != "Payroll" {
		t.Errorf("expected original name refreshed from feed, got %v", tx["original_name"])
	}
}

func TestRouter_Authentication(t *testing.T) {
	app := setupApp(t)

	t.Run("health is public", func(t *testing.T) {
		expectStatus(t, app.request("GET", "/api/health", "", nil), http.StatusOK)
	})

	t.Run("user routes need a token", func(t *testing.T) {
		expectStatus(t, app.request("GET", "/api/v1/rules", "", nil), http.StatusUnauthorized)
	})

	t.Run("pipeline rejects a user token", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/pipeline/sync", "", map[string]string{"Authorization": "Bearer " + app.Token})
		expectStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("pipeline syncs every user with the api key", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/pipeline/sync", "", map[string]string{"X-API-Key": testAPIKey})
		expectStatus(t, rec, http.StatusOK)
		result := parseJSON(t, rec)["sync"].(map[string]interface{})
		if result["users"] != float64(1) || result["added"] != float64(4) {
			t.Errorf("unexpected pipeline summary: %v", result)
		}
	})
}
