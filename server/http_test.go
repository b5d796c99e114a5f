package server

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/netops-console/vyos_console_api/actions"
	"gitlab.com/netops-console/vyos_console_api/cache/configcache"
	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/httputils"
	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/service"
	"gitlab.com/netops-console/vyos_console_api/vyos"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// configAPI imitates the router configuration API for the firewall/WAN rule set
type configAPI struct {
	lock       sync.Mutex
	rules      string
	reorders   []string
	refreshes  int
	rejectWith string
}

func (f *configAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/rules/firewall/WAN":
		_, _ = w.Write([]byte(`{"rules":` + f.rules + `}`))
	case r.Method == http.MethodPost && r.URL.Path == "/rules/firewall/WAN/reorder":
		if f.rejectWith != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(f.rejectWith))
			return
		}
		body, _ := ioutil.ReadAll(r.Body)
		f.reorders = append(f.reorders, string(body))
		f.rules = `[
			{"rule_number": 10, "action": "reject"},
			{"rule_number": 11, "action": "accept"},
			{"rule_number": 12, "action": "drop"}
		]`
	case r.Method == http.MethodPost && r.URL.Path == "/cache/refresh":
		f.refreshes++
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type memoryStore struct {
	cards map[string][]model.DashboardCard
}

func (m *memoryStore) GetDashboardCards(dashboard string) ([]model.DashboardCard, error) {
	return append([]model.DashboardCard{}, m.cards[dashboard]...), nil
}

func (m *memoryStore) SaveDashboardCards(dashboard string, cards []model.DashboardCard) error {
	m.cards[dashboard] = append([]model.DashboardCard{}, cards...)
	return nil
}

type consoleClient struct {
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func (c *consoleClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(c.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}
	return w
}

func (c *consoleClient) rules(w *httptest.ResponseRecorder) model.RuleList {
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var list model.RuleList
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func (c *consoleClient) dashboard(w *httptest.ResponseRecorder) model.Dashboard {
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var dash model.Dashboard
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &dash))
	return dash
}

func newTestRouter(t *testing.T) (*configAPI, *memoryStore, func() *consoleClient) {
	gin.SetMode(gin.TestMode)

	fake := &configAPI{rules: `[
		{"rule_number": 10, "action": "accept"},
		{"rule_number": 20, "action": "drop"},
		{"rule_number": 30, "action": "reject"}
	]`}
	api := httptest.NewServer(fake)
	t.Cleanup(api.Close)

	store := &memoryStore{cards: map[string][]model.DashboardCard{
		"main": {{ID: "A", Title: "Interfaces", Column: 0, Position: 0, Span: 2}},
	}}

	cfg := config.Config{
		Server: config.ServerConfig{
			Session: config.SessionConfig{Name: "console", Secret: "test-secret-test-secret-test-secret", MaxAge: 3600},
		},
		ConfigAPI: vyos.Config{URL: api.URL, Timeout: time.Second},
	}
	srv := service.NewService(store, vyos.NewClient(cfg.ConfigAPI), configcache.NewMemory(), time.Minute, time.Second)
	a, err := actions.NewActions(cfg, srv)
	require.NoError(t, err)
	router := NewRouter(cfg, a)

	return fake, store, func() *consoleClient {
		return &consoleClient{t: t, router: router}
	}
}

func TestPing(t *testing.T) {
	_, _, newClient := newTestRouter(t)
	w := newClient().do(http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRuleReorderFlow(t *testing.T) {
	fake, _, newClient := newTestRouter(t)
	console := newClient()

	list := console.rules(console.do(http.MethodGet, "/rules/firewall/WAN", nil))
	assert.Equal(t, []int{10, 20, 30}, model.RuleNumbers(list.Rules))
	assert.False(t, list.HasChanges)
	require.NotEmpty(t, console.cookies)

	// drag rule 30 over rule 10 and release it there
	list = console.rules(console.do(http.MethodPost, "/rules/firewall/WAN/move", model.MoveRuleRequest{
		Events: []model.DragEvent{
			{Type: "drag_start", ID: "30"},
			{Type: "drag_over", ID: "20"},
			{Type: "drag_over", ID: "10"},
			{Type: "drag_end", ID: "10"},
		},
	}))
	assert.Equal(t, []int{30, 10, 20}, model.RuleNumbers(list.Rules))
	assert.True(t, list.HasChanges)

	// another browser session does not see the staged order
	other := newClient()
	otherList := other.rules(other.do(http.MethodGet, "/rules/firewall/WAN", nil))
	assert.Equal(t, []int{10, 20, 30}, model.RuleNumbers(otherList.Rules))

	w := console.do(http.MethodGet, "/rules/firewall/WAN/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var preview model.ReorderPreview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	require.Len(t, preview.Plan, 3)
	assert.Equal(t, "delete firewall name WAN rule 30", preview.Commands[0])

	list = console.rules(console.do(http.MethodPost, "/rules/firewall/WAN/save", nil))
	assert.False(t, list.HasChanges)
	assert.Equal(t, []int{10, 11, 12}, model.RuleNumbers(list.Rules))

	require.Len(t, fake.reorders, 1)
	assert.JSONEq(t, `[
		{"old_number": 30, "new_number": 10, "rule_data": {"rule_number": 30, "action": "reject"}},
		{"old_number": 10, "new_number": 11, "rule_data": {"rule_number": 10, "action": "accept"}},
		{"old_number": 20, "new_number": 12, "rule_data": {"rule_number": 20, "action": "drop"}}
	]`, fake.reorders[0])
	assert.Equal(t, 1, fake.refreshes)
}

func TestRuleMoveReleasedOutside(t *testing.T) {
	_, _, newClient := newTestRouter(t)
	console := newClient()

	list := console.rules(console.do(http.MethodPost, "/rules/firewall/WAN/move", model.MoveRuleRequest{
		Events: []model.DragEvent{{Type: "drag_start", ID: "30"}, {Type: "drag_end"}},
	}))
	assert.False(t, list.HasChanges)
	assert.Equal(t, []int{10, 20, 30}, model.RuleNumbers(list.Rules))
}

func TestRuleCommitRejected(t *testing.T) {
	fake, _, newClient := newTestRouter(t)
	fake.rejectWith = `{"error": "validation failed", "fields": [{"field": "rule 10", "message": "destination port is invalid"}]}`
	console := newClient()

	console.rules(console.do(http.MethodPost, "/rules/firewall/WAN/move", model.MoveRuleRequest{Source: 30, Target: 10}))

	w := console.do(http.MethodPost, "/rules/firewall/WAN/save", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp httputils.RequestError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rule 10: destination port is invalid", resp.Error)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "rule 10", resp.Fields[0].Field)

	// the staged order survives the failed commit
	list := console.rules(console.do(http.MethodGet, "/rules/firewall/WAN", nil))
	assert.True(t, list.HasChanges)
	assert.Equal(t, []int{30, 10, 20}, model.RuleNumbers(list.Rules))

	list = console.rules(console.do(http.MethodPost, "/rules/firewall/WAN/cancel", nil))
	assert.False(t, list.HasChanges)
	assert.Equal(t, []int{10, 20, 30}, model.RuleNumbers(list.Rules))
}

func TestDashboardFlow(t *testing.T) {
	_, store, newClient := newTestRouter(t)
	console := newClient()

	dash := console.dashboard(console.do(http.MethodPost, "/dashboards/main/cards", model.AddCardRequest{ID: "B", Title: "CPU", Span: 1}))
	assert.True(t, dash.HasChanges)
	require.Len(t, dash.Cards, 2)
	assert.Equal(t, "B", dash.Cards[1].ID)
	assert.Equal(t, 2, dash.Cards[1].Column)
	assert.Equal(t, 0, dash.Cards[1].Position)

	column := 0
	dash = console.dashboard(console.do(http.MethodPost, "/dashboards/main/cards/B/drop", model.DropCardRequest{Column: &column}))
	assert.Equal(t, 0, dash.Cards[1].Column)
	assert.Equal(t, 1, dash.Cards[1].Position)
	assert.Len(t, store.cards["main"], 1)

	dash = console.dashboard(console.do(http.MethodPost, "/dashboards/main/save", nil))
	assert.False(t, dash.HasChanges)
	assert.Len(t, store.cards["main"], 2)
}

func TestErrorResponses(t *testing.T) {
	_, _, newClient := newTestRouter(t)
	console := newClient()

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		code   int
	}{
		{"unknown card", http.MethodPost, "/dashboards/main/cards/Z/resize", model.ResizeCardRequest{Span: 2}, http.StatusNotFound},
		{"invalid span", http.MethodPost, "/dashboards/main/cards/A/resize", model.ResizeCardRequest{Span: 5}, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/dashboards/main/cards", map[string]interface{}{"id": "C"}, http.StatusBadRequest},
		{"card id too long", http.MethodPost, "/dashboards/main/cards", model.AddCardRequest{ID: strings.Repeat("c", 65), Title: "CPU"}, http.StatusBadRequest},
		{"duplicate card", http.MethodPost, "/dashboards/main/cards", model.AddCardRequest{ID: "A", Title: "again"}, http.StatusConflict},
		{"unknown kind", http.MethodGet, "/rules/bridge/br0", nil, http.StatusBadRequest},
		{"unknown drag event", http.MethodPost, "/rules/firewall/WAN/move", model.MoveRuleRequest{Events: []model.DragEvent{{Type: "drop"}}}, http.StatusBadRequest},
		{"missing move target", http.MethodPost, "/rules/firewall/WAN/move", model.MoveRuleRequest{Source: 10}, http.StatusBadRequest},
		{"invalid rule number", http.MethodDelete, "/rules/firewall/WAN/abc", nil, http.StatusBadRequest},
		{"unknown rule", http.MethodDelete, "/rules/firewall/WAN/99", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := console.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			var resp httputils.RequestError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
