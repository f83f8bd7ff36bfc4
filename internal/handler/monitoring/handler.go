package monitoring

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clusterboard/dashboard-api/internal/handler"
)

// Handler proxies dashboard monitoring requests to the Prometheus and
// Alertmanager v1 APIs and serves the Alertmanager webhook receiver.
type Handler struct {
	prometheus   *apiProxy
	alertmanager *apiProxy
	receiver     *Receiver
}

func NewHandler(prometheusHost, alertmanagerHost string) *Handler {
	client := &http.Client{Timeout: 30 * time.Second}
	return &Handler{
		prometheus:   &apiProxy{base: prometheusHost + "/api/v1", client: client},
		alertmanager: &apiProxy{base: alertmanagerHost + "/api/v1", client: client},
		receiver:     NewReceiver(),
	}
}

// RegisterRoutes wires the authenticated monitoring endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.ListAlerts)
	r.GET("/rules", h.Rules)
	r.GET("/silences", h.ListSilences)
	r.POST("/silence", h.CreateSilence)
	r.DELETE("/silence/:sid", h.ExpireSilence)
	r.GET("/notifications", h.Notifications)
}

// RegisterReceiver wires the unauthenticated Alertmanager webhook endpoint.
func (h *Handler) RegisterReceiver(r *gin.RouterGroup) {
	r.POST("/prometheus_receiver", h.ReceiveNotification)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	h.alertmanager.forward(c, http.MethodGet, "/alerts", c.Request.URL.Query())
}

func (h *Handler) Rules(c *gin.Context) {
	h.prometheus.forward(c, http.MethodGet, "/rules", c.Request.URL.Query())
}

func (h *Handler) ListSilences(c *gin.Context) {
	h.alertmanager.forward(c, http.MethodGet, "/silences", c.Request.URL.Query())
}

func (h *Handler) CreateSilence(c *gin.Context) {
	h.alertmanager.forward(c, http.MethodPost, "/silences", nil)
}

func (h *Handler) ExpireSilence(c *gin.Context) {
	sid := c.Param("sid")
	if sid == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("silence id is required"))
		return
	}
	h.alertmanager.forward(c, http.MethodDelete, "/silence/"+url.PathEscape(sid), nil)
}

func (h *Handler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.receiver.Since(c.Query("from")))
}

func (h *Handler) ReceiveNotification(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	h.receiver.Store(payload)
	c.JSON(http.StatusOK, gin.H{})
}

// apiProxy relays a request to a monitoring backend and passes the response
// through untouched, status code included.
type apiProxy struct {
	base   string
	client *http.Client
}

func (p *apiProxy) forward(c *gin.Context, method, path string, params url.Values) {
	target := p.base + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var body io.Reader
	if method == http.MethodPost || method == http.MethodPut {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), method, target, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("internal server error"))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway,
			handler.NewErrorResponse(fmt.Sprintf("monitoring backend unreachable: %v", err)))
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse("failed to read backend response"))
		return
	}

	c.Data(resp.StatusCode, "application/json", raw)
}
