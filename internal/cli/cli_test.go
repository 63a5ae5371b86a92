package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikelcalvo/admin-cli/internal/auth"
	"github.com/mikelcalvo/admin-cli/internal/config"
	"github.com/mikelcalvo/admin-cli/internal/logging"
)

func init() {
	color.NoColor = true
}

type recorded struct {
	Method string
	Target string
	Auth   string
	Body   string
}

// shopAPI serves canned answers keyed by "METHOD /path?query" and records every
// request it sees.
type shopAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]string
	status   map[string]int
	requests []recorded

	validToken string
	refreshed  string
}

func newShopAPI(t *testing.T) *shopAPI {
	t.Helper()
	api := &shopAPI{
		t:          t,
		routes:     make(map[string]string),
		status:     make(map[string]int),
		validToken: "test-access",
	}
	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)
	return api
}

func (api *shopAPI) baseURL() string {
	return api.server.URL + "/api/v1"
}

func (api *shopAPI) route(key string, status int, body string) {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.routes[key] = body
	api.status[key] = status
}

func (api *shopAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	target := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	api.mu.Lock()
	api.requests = append(api.requests, recorded{Method: r.Method, Target: target, Auth: r.Header.Get("Authorization"), Body: string(body)})
	valid := api.validToken
	api.mu.Unlock()

	switch target {
	case "/token/":
		var creds map[string]string
		_ = json.Unmarshal(body, &creds)
		if creds["username"] != "admin" || creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":"test-access","refresh":"test-refresh"}`))
		return
	case "/token/refresh/":
		api.mu.Lock()
		next := api.refreshed
		if next != "" {
			api.validToken = next
		}
		api.mu.Unlock()
		if next == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"access":"` + next + `"}`))
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+valid {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
		return
	}

	key := r.Method + " " + target
	api.mu.Lock()
	resp, ok := api.routes[key]
	status := api.status[key]
	api.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp))
}

func (api *shopAPI) last() recorded {
	api.mu.Lock()
	defer api.mu.Unlock()
	require.NotEmpty(api.t, api.requests)
	return api.requests[len(api.requests)-1]
}

func (api *shopAPI) count() int {
	api.mu.Lock()
	defer api.mu.Unlock()
	return len(api.requests)
}

// writeConfig creates a config file pointing at baseURL, with a logged in default
// profile unless access is empty.
func writeConfig(t *testing.T, baseURL, access, refresh string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.BaseURL = baseURL
	if access == "" {
		require.NoError(t, cfg.Save())
		return path
	}
	require.NoError(t, cfg.SaveProfile("default", "admin", access, refresh))
	return path
}

func run(t *testing.T, cfgPath, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func createTestJWT(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLogin_WithFlags(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	out, _, err := run(t, cfgPath, "", "login", "-u", "admin", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	p, err := cfg.GetProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, "test-access", p.AccessToken)
	assert.Equal(t, "test-refresh", p.RefreshToken)
	assert.Equal(t, "default", cfg.CurrentProfile)
}

func TestLogin_Prompts(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, errOut, err := run(t, cfgPath, "admin\nsecret\n", "--profile", "Staff", "login")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Username: ")
	assert.Contains(t, errOut, "Password: ")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	_, err = cfg.GetProfile("staff")
	require.NoError(t, err)
	assert.Equal(t, "staff", cfg.CurrentProfile)
}

func TestLogin_Rejected(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, _, err := run(t, cfgPath, "", "login", "-u", "admin", "-p", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed: 401")
	assert.Contains(t, err.Error(), "No active account")
}

func TestLogout(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out from profile 'default'")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Empty(t, cfg.Profiles)

	_, _, err = run(t, cfgPath, "", "logout")
	assert.Error(t, err)
}

func TestWhoami(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), createTestJWT(t, time.Hour), "opaque")

	out, _, err := run(t, cfgPath, "", "-o", "json", "whoami")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "admin", info["username"])
	assert.Equal(t, "default", info["profile"])
	assert.Equal(t, api.baseURL(), info["base_url"])
	assert.NotEmpty(t, info["access_expires"])
	assert.NotContains(t, info, "refresh_expires")
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, _, err := run(t, cfgPath, "", "whoami")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestList_Table(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /orders?customer=4&payment_status=2", http.StatusOK,
		`[{"id":42,"customer_full_name":"Ana Lopez","payment_status":2,"order_status":1,"total":"31.00","datetime":"2024-03-01T10:20:30Z"}]`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "orders", "list", "-f", "payment_status=2", "--filter", "customer=4", "-f", "order_status=")
	require.NoError(t, err)

	req := api.last()
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/orders?customer=4&payment_status=2", req.Target)
	assert.Equal(t, "Bearer test-access", req.Auth)

	assert.Contains(t, out, "Customer")
	assert.Contains(t, out, "Ana Lopez")
	assert.Contains(t, out, "Successful")
	assert.Contains(t, out, "Delivered")
	assert.Contains(t, out, "2024-03-01 10:20:30")
	assert.Contains(t, out, "1 orders")
}

func TestList_JSON(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /categories", http.StatusOK, `[{"id":1,"name":"Lighting"},{"id":2,"name":"Books"}]`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "categories", "ls", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Lighting"},{"id":2,"name":"Books"}]`, out)
}

func TestList_Empty(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /employees", http.StatusOK, `[]`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "employees", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No employees found")
}

func TestList_BadFilters(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{"unknown key", "color=red", `unknown filter "color"`},
		{"missing equals", "customer", "expected key=value"},
		{"invalid choice", "order_status=9", "Order status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, cfgPath, "", "orders", "list", "-f", tt.filter)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.Zero(t, api.count())
}

func TestList_NotLoggedIn(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, _, err := run(t, cfgPath, "", "products", "list")
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
	assert.Zero(t, api.count())
}

func TestGet_OrderShowsItems(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /orders/42", http.StatusOK, `{"id":42,"customer_full_name":"Ana Lopez","payment_status":0,"order_status":0,"total":"31.00"}`)
	api.route("GET /order-items?order=42", http.StatusOK, `[{"id":7,"order":42,"product_name":"Desk lamp","quantity":2,"price":"15.50","sub_total":"31.00"}]`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "orders", "get", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #42")
	assert.Contains(t, out, "Customer Full Name:")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Items")
	assert.Contains(t, out, "Desk lamp")
	assert.Equal(t, "/order-items?order=42", api.last().Target)
}

func TestGet_NotFound(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "customers", "get", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Request failed with status: 404 Not Found")
	assert.Contains(t, err.Error(), "Not found.")
}

func TestAnalytics_ProductYAML(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /products/7/analytics", http.StatusOK,
		`{"total_sold":12,"unit_symbol":"u","total_revenue":"180.00","total_customers":3,"top_customers":[],"latest_purchases":[]}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "products", "analytics", "7", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "total_sold: 12")
	assert.Contains(t, out, "unit_symbol: u")
	assert.Contains(t, out, "total_revenue: 180")
	assert.Contains(t, out, "top_customers: []")
}

func TestAnalytics_CategoryTable(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /categories/3/analytics", http.StatusOK,
		`{"total_products":4,"total_sold":10,"total_revenue":"99.00","total_customers":2,
		  "top_customers":[{"order__customer__first_name":"Ana","order__customer__last_name":"Lopez","total_quantity":6,"total_revenue":"60.00","last_purchase":"2024-03-01T10:20:30Z"}],
		  "top_products":[]}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "categories", "analytics", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Category #3 analytics")
	assert.Contains(t, out, "$99.00")
	assert.Contains(t, out, "Ana Lopez")
	assert.Contains(t, out, "2024-03-01 10:20:30")
	assert.Contains(t, out, "No sales yet")
}

func TestAnalytics_UsesConfiguredPath(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /products/7/analitics", http.StatusOK, `{"total_sold":1}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "config", "set", "analytics_path", "analitics")
	require.NoError(t, err)

	_, _, err = run(t, cfgPath, "", "products", "analytics", "7")
	require.NoError(t, err)
	assert.Equal(t, "/products/7/analitics", api.last().Target)
}

func TestCreate_Set(t *testing.T) {
	api := newShopAPI(t)
	api.route("POST /categories", http.StatusCreated, `{"id":9,"name":"Books"}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "categories", "create", "--set", "name=Books")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Category #9")

	req := api.last()
	assert.Equal(t, "POST", req.Method)
	assert.JSONEq(t, `{"name":"Books"}`, req.Body)
}

func TestCreate_NumericFields(t *testing.T) {
	api := newShopAPI(t)
	api.route("POST /products", http.StatusCreated, `{"id":5}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "products", "create",
		"-s", "name=Lamp", "-s", "cost=10.5", "-s", "price=15", "-s", "category=3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Lamp","cost":10.5,"price":15,"category":3}`, api.last().Body)
}

func TestCreate_SignedNumberIsSentAsJSON(t *testing.T) {
	api := newShopAPI(t)
	api.route("POST /products", http.StatusCreated, `{"id":6}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "products", "create",
		"-s", "name=Lamp", "-s", "cost=+5", "-s", "price=15", "-s", "category=03")
	require.NoError(t, err)
	assert.Contains(t, out, "Created")
	assert.JSONEq(t, `{"name":"Lamp","cost":5,"price":15,"category":3}`, api.last().Body)
}

func TestCreate_ValidationFailsLocally(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "products", "create", "--set", "name=Lamp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cost")
	assert.Zero(t, api.count())
}

func TestCreate_ServerRejects(t *testing.T) {
	api := newShopAPI(t)
	api.route("POST /categories", http.StatusBadRequest, `{"name":["category with this name already exists."]}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "categories", "create", "--data", `{"name":"Books"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400 Bad Request")
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreate_NothingToSend(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "categories", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to send")

	_, _, err = run(t, cfgPath, "", "categories", "create", "--set", "name=A", "--data", `{"name":"B"}`)
	assert.Error(t, err)
	assert.Zero(t, api.count())
}

func TestUpdate_Data(t *testing.T) {
	api := newShopAPI(t)
	api.route("PATCH /orders/42", http.StatusOK, `{"id":42,"order_status":1}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "orders", "update", "42", "--data", `{"order_status":1}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated Order #42")

	req := api.last()
	assert.Equal(t, "PATCH", req.Method)
	assert.Equal(t, "/orders/42", req.Target)
	assert.JSONEq(t, `{"order_status":1}`, req.Body)
}

func TestUpdate_DataFromFile(t *testing.T) {
	api := newShopAPI(t)
	api.route("PATCH /customers/4", http.StatusOK, `{"id":4}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	file := filepath.Join(t.TempDir(), "patch.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"alias":"ana"}`), 0o600))

	_, _, err := run(t, cfgPath, "", "customers", "update", "4", "-d", "@"+file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"alias":"ana"}`, api.last().Body)
}

func TestUpdate_SetSendsOnlyGivenFields(t *testing.T) {
	api := newShopAPI(t)
	api.route("PATCH /products/7", http.StatusOK, `{"id":7}`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "products", "update", "7", "--set", "price=20")
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":20}`, api.last().Body)
}

func TestUpdate_BlankSetIsNothing(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	_, _, err := run(t, cfgPath, "", "products", "update", "7", "--set", "price=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
	assert.Zero(t, api.count())
}

func TestExpiredTokenIsRefreshedAndSaved(t *testing.T) {
	api := newShopAPI(t)
	fresh := createTestJWT(t, time.Hour)
	api.refreshed = fresh
	api.route("GET /categories", http.StatusOK, `[]`)
	cfgPath := writeConfig(t, api.baseURL(), createTestJWT(t, -time.Minute), "test-refresh")

	_, _, err := run(t, cfgPath, "", "categories", "list")
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+fresh, api.last().Auth)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	p, err := cfg.GetProfile("default")
	require.NoError(t, err)
	assert.Equal(t, fresh, p.AccessToken)
	assert.Equal(t, "test-refresh", p.RefreshToken)
	assert.Equal(t, "admin", p.Username)
}

func TestPing(t *testing.T) {
	api := newShopAPI(t)
	api.route("GET /categories", http.StatusOK, `[]`)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection successful")
	assert.Contains(t, out, "admin")
}

func TestPing_Unauthorized(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "stale", "test-refresh")

	_, _, err := run(t, cfgPath, "", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Contains(t, err.Error(), "401")
}

func TestPing_Unreachable(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")
	api.server.Close()

	_, _, err := run(t, cfgPath, "", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection failed")
}

func TestConfigShow_JSON(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "test-access", "test-refresh")

	out, _, err := run(t, cfgPath, "", "config", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "test-access")

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, api.baseURL(), view["base_url"])
	assert.Equal(t, "30s", view["timeout"])
	assert.Equal(t, cfgPath, view["path"])
	assert.Equal(t, []any{"default"}, view["profiles"])
}

func TestConfigShow_Table(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	out, _, err := run(t, cfgPath, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Current configuration:")
	assert.Contains(t, out, "analytics (default)")
	assert.Contains(t, out, "run 'admin-cli login'")
}

func TestConfigSet(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, _, err := run(t, cfgPath, "", "config", "set", "timeout", "45s")
	require.NoError(t, err)

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Timeout)

	tests := []struct {
		key, value, want string
	}{
		{"timeout", "soon", "invalid timeout"},
		{"base_url", "not a url", "must be a valid URL"},
		{"log.level", "loud", "must be one of"},
		{"current_profile", "ghost", "profile 'ghost' not found"},
		{"colour", "red", "unknown key"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, _, err := run(t, cfgPath, "", "config", "set", tt.key, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	api := newShopAPI(t)
	cfgPath := writeConfig(t, api.baseURL(), "", "")

	_, _, err := run(t, cfgPath, "", "config", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestAppLogin_SavesURLAndTokens(t *testing.T) {
	api := newShopAPI(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	a := &app{cfg: cfg, logger: logging.Discard()}
	require.NoError(t, a.login(context.Background(), api.baseURL(), "admin", "secret"))

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, api.baseURL(), reloaded.BaseURL)
	p, err := reloaded.GetProfile("default")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, "test-access", p.AccessToken)
	assert.Equal(t, "test-refresh", p.RefreshToken)
}

func TestAppLogin_RejectedKeepsConfig(t *testing.T) {
	api := newShopAPI(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	before := cfg.BaseURL

	a := &app{cfg: cfg, logger: logging.Discard()}
	err = a.login(context.Background(), api.baseURL(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, before, cfg.BaseURL)
	_, err = cfg.GetProfile("default")
	assert.Error(t, err)
}
