package handler

import (
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/handler/response"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "dao-voting-relay"
	version     = "1.0.0"
)

// NodeStatus reports the result of the last node probe.
type NodeStatus interface {
	NodeHealthy() (healthy bool, checkedAt time.Time)
}

type HealthHandler struct {
	node NodeStatus
}

func NewHealthHandler(node NodeStatus) *HealthHandler {
	return &HealthHandler{node: node}
}

// HealthCheck godoc
// @Summary Check system health
// @Description Relay status plus the outcome of the last node probe. The relay stays UP while the node is down.
// @Tags system
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	node := gin.H{"status": "UNKNOWN"}
	if h.node != nil {
		healthy, checkedAt := h.node.NodeHealthy()
		if !checkedAt.IsZero() {
			node["status"] = "DOWN"
			if healthy {
				node["status"] = "UP"
			}
			node["checked_at"] = checkedAt.UTC().Format(time.RFC3339)
		}
	}
	response.Success(c, gin.H{
		"status":  "UP",
		"version": version,
		"service": serviceName,
		"node":    node,
	})
}
