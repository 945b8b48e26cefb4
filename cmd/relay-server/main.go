package main

import (
	"context"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/bootstrap"
	"github.com/Mahd-Mehn/dao-voting/internal/handler"
	"github.com/Mahd-Mehn/dao-voting/internal/server"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/Mahd-Mehn/dao-voting/docs/swagger"
)

// @title DAO Voting Relay API
// @version 1.0
// @description Stateless relay that signs and submits VotingDAO transactions and reads proposal state.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := config.Global

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 连接节点 & 组装交易流水线
	dialCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	relay, err := bootstrap.New(dialCtx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("节点连接失败", zap.String("rpc_url", cfg.Chain.RpcUrl), zap.Error(err))
	}
	defer relay.Close()

	// 3. gRPC Server (health + reflection)
	grpcServer, grpcHealth := server.NewGRPCServer()

	// 4. 节点探活
	probeCtx, stopProbe := context.WithCancel(context.Background())
	defer stopProbe()
	probe := server.NewNodeProbe(relay.Client, cfg.App.ProbeInterval, grpcHealth)
	go probe.Run(probeCtx)

	// 5. HTTP Router
	r := server.NewHTTPRouter(
		server.RouterConfig{RequestTimeout: cfg.App.RequestTimeout},
		handler.NewProposalHandler(relay.Voting, relay.Reader),
		handler.NewHealthHandler(probe),
	)

	// 6. 启动应用
	app, err := server.New(server.Config{
		HttpPort: cfg.App.HttpPort,
		GrpcPort: cfg.App.GrpcPort,
	}, server.WithCORS(r, cfg.App.CorsOrigins), grpcServer)
	if err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}

	logger.Info("Relay ready",
		zap.Int64("chain_id", cfg.Chain.ChainID),
		zap.String("contract", cfg.Chain.ContractAddress),
		zap.String("nonce_source", cfg.Chain.NonceSource),
		zap.String("events", cfg.Events.Publisher),
	)

	// 运行 (阻塞)
	if err := app.Run(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	// 7. 退出后资源清理 (deferred)
	logger.Info("系统已退出")
}
