package monitoring_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterboard/dashboard-api/internal/handler/monitoring"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func newBackend(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := new(bytes.Buffer)
		_, _ = raw.ReadFrom(r.Body)

		recorded.Method = r.Method
		recorded.Path = r.URL.Path
		recorded.Query = r.URL.RawQuery
		recorded.Body = raw.String()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, recorded
}

func newTestRouter(prometheusHost, alertmanagerHost string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := monitoring.NewHandler(prometheusHost, alertmanagerHost)
	h.RegisterRoutes(engine.Group("/api/prometheus"))
	h.RegisterReceiver(engine.Group("/api"))
	return engine
}

func TestListAlerts_ProxiesToAlertmanager(t *testing.T) {
	am, amRec := newBackend(t, http.StatusOK, `[{"name":"alert1"}]`)
	prom, _ := newBackend(t, http.StatusOK, `[]`)

	engine := newTestRouter(prom.URL, am.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prometheus", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodGet, amRec.Method)
	assert.Equal(t, "/api/v1/alerts", amRec.Path)
	assert.JSONEq(t, `[{"name":"alert1"}]`, w.Body.String())
}

func TestRules_ProxiesToPrometheus(t *testing.T) {
	am, _ := newBackend(t, http.StatusOK, `[]`)
	prom, promRec := newBackend(t, http.StatusOK, `{"groups":[]}`)

	engine := newTestRouter(prom.URL, am.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prometheus/rules?type=alerting", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/rules", promRec.Path)
	assert.Equal(t, "type=alerting", promRec.Query)
}

func TestSilences_CRUD(t *testing.T) {
	am, amRec := newBackend(t, http.StatusOK, `{"silenceID":"abc"}`)
	prom, _ := newBackend(t, http.StatusOK, `[]`)

	engine := newTestRouter(prom.URL, am.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prometheus/silences", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/v1/silences", amRec.Path)
	assert.Equal(t, http.MethodGet, amRec.Method)

	body := bytes.NewBufferString(`{"matchers":[],"comment":"maintenance"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/prometheus/silence", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodPost, amRec.Method)
	assert.Equal(t, "/api/v1/silences", amRec.Path)
	assert.JSONEq(t, `{"matchers":[],"comment":"maintenance"}`, amRec.Body)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/prometheus/silence/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodDelete, amRec.Method)
	assert.Equal(t, "/api/v1/silence/abc", amRec.Path)
}

func TestProxy_PassesBackendStatusThrough(t *testing.T) {
	am, _ := newBackend(t, http.StatusServiceUnavailable, `{"error":"down"}`)
	prom, _ := newBackend(t, http.StatusOK, `[]`)

	engine := newTestRouter(prom.URL, am.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prometheus", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"down"}`, w.Body.String())
}

func TestReceiver_NotificationsFeed(t *testing.T) {
	am, _ := newBackend(t, http.StatusOK, `[]`)
	prom, _ := newBackend(t, http.StatusOK, `[]`)

	engine := newTestRouter(prom.URL, am.URL)

	post := func(payload string) {
		req := httptest.NewRequest(http.MethodPost, "/api/prometheus_receiver",
			bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	fetch := func(query string) []map[string]interface{} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/prometheus/notifications"+query, nil))
		require.Equal(t, http.StatusOK, w.Code)
		var out []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return out
	}

	assert.Empty(t, fetch(""))
	assert.Empty(t, fetch("?from=last"))

	post(`{"name":"foo"}`)
	post(`{"name":"bar"}`)

	all := fetch("")
	require.Len(t, all, 2)
	assert.Equal(t, "foo", all[0]["name"])
	assert.NotEmpty(t, all[0]["id"])
	assert.NotEmpty(t, all[0]["notified"])

	last := fetch("?from=last")
	require.Len(t, last, 1)
	assert.Equal(t, "bar", last[0]["name"])

	sinceFirst := fetch("?from=" + all[0]["id"].(string))
	require.Len(t, sinceFirst, 1)
	assert.Equal(t, "bar", sinceFirst[0]["name"])

	assert.Empty(t, fetch("?from="+last[0]["id"].(string)))
	assert.Empty(t, fetch("?from=42424242"))
}
