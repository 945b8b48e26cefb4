package server

import (
	"context"
	"sync"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"
	"github.com/Mahd-Mehn/dao-voting/pkg/monitor"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NodeProbe periodically asks the node for its chain id and publishes the
// result to /health, the gRPC health service and the relay_node_up gauge.
type NodeProbe struct {
	client   chain.Client
	interval time.Duration
	grpc     *health.Server // optional

	mu        sync.RWMutex
	healthy   bool
	checkedAt time.Time
}

const defaultProbeInterval = 15 * time.Second

func NewNodeProbe(client chain.Client, interval time.Duration, grpcHealth *health.Server) *NodeProbe {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &NodeProbe{client: client, interval: interval, grpc: grpcHealth}
}

// NodeHealthy implements handler.NodeStatus.
func (p *NodeProbe) NodeHealthy() (bool, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy, p.checkedAt
}

// Run probes once immediately, then every interval until ctx is done.
func (p *NodeProbe) Run(ctx context.Context) {
	p.Check(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}

// Check runs a single probe.
func (p *NodeProbe) Check(ctx context.Context) {
	_, err := p.client.ChainID(ctx)
	healthy := err == nil

	p.mu.Lock()
	changed := healthy != p.healthy || p.checkedAt.IsZero()
	p.healthy = healthy
	p.checkedAt = time.Now()
	p.mu.Unlock()

	monitor.SetNodeUp(healthy)
	if p.grpc != nil {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if healthy {
			status = healthpb.HealthCheckResponse_SERVING
		}
		p.grpc.SetServingStatus("", status)
		p.grpc.SetServingStatus(healthServiceName, status)
	}
	if changed {
		if healthy {
			logger.Info("Node reachable")
		} else {
			logger.Warn("Node unreachable", zap.Error(err))
		}
	}
}
