package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// healthServiceName is the service name reported by grpc.health.v1.
const healthServiceName = "dao.voting.Relay"

// NewGRPCServer 初始化并注册 gRPC 服务 (health + reflection). Status starts
// NOT_SERVING until the first node probe.
func NewGRPCServer() (*grpc.Server, *health.Server) {
	s := grpc.NewServer()

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthSrv.SetServingStatus(healthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, healthSrv)

	reflection.Register(s)
	return s, healthSrv
}
