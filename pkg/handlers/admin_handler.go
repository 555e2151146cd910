package handlers

import (
	"crypto/subtle"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Maintenance is the switch that takes the service out of rotation.
type Maintenance struct {
	on atomic.Bool
}

// Enabled reports whether maintenance mode is on.
func (m *Maintenance) Enabled() bool { return m.on.Load() }

// Set turns maintenance mode on or off.
func (m *Maintenance) Set(on bool) { m.on.Store(on) }

// AdminHandler handles operator requests.
type AdminHandler struct {
	username    string
	password    string
	maintenance *Maintenance
	logger      *zap.Logger
}

// NewAdminHandler creates an AdminHandler. Without a configured password
// every maintenance request is rejected.
func NewAdminHandler(username, password string, maintenance *Maintenance, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{username: username, password: password, maintenance: maintenance, logger: logger}
}

// AdminCredentials is the body of a maintenance request.
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) authorize(c *gin.Context) bool {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(h.password)) == 1
	if h.password == "" || !userOK || !passOK {
		h.logger.Warn("rejected admin request", zap.String("username", input.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return false
	}
	return true
}

// StartMaintenance handles POST /api/v1/admin/maintenance/start.
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Set(true)
	h.logger.Info("maintenance mode started")
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance handles POST /api/v1/admin/maintenance/stop.
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Set(false)
	h.logger.Info("maintenance mode stopped")
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}

// GetHealthStatus handles GET /api/v1/admin/health-status.
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isMaintenanceMode": h.maintenance.Enabled()})
}

// HealthCheck answers load balancer probes on /health.
func (h *AdminHandler) HealthCheck(c *gin.Context) {
	if h.maintenance.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
