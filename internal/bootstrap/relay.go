// Package bootstrap assembles the relay pipeline from configuration. Both
// relay-server and relay-cli build their services through it.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/service"
	"github.com/Mahd-Mehn/dao-voting/internal/service/mq"
	"github.com/Mahd-Mehn/dao-voting/pkg/config"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/database"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"
	"github.com/Mahd-Mehn/dao-voting/pkg/utils/lock"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Relay holds every long-lived component of the pipeline.
type Relay struct {
	Client    chain.Client
	Builder   *service.TxBuilder
	Signer    *service.Signer
	Submitter *service.Submitter
	Voting    *service.VotingService
	Reader    *service.ProposalReader

	Producer mq.Producer
	Redis    *redis.Client // nil unless a component needs it
}

// New dials the node and builds the pipeline.
func New(ctx context.Context, cfg config.Config) (*Relay, error) {
	desc, err := contract.Load(cfg.Chain.ContractAddress, cfg.Chain.AbiPath)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	client, err := chain.Dial(ctx, cfg.Chain, desc)
	if err != nil {
		return nil, err
	}
	r, err := Assemble(ctx, cfg, client)
	if err != nil {
		client.Close()
		return nil, err
	}
	return r, nil
}

// Assemble builds the pipeline on an existing client. The Relay takes
// ownership of client.
func Assemble(ctx context.Context, cfg config.Config, client chain.Client) (*Relay, error) {
	r := &Relay{Client: client, Producer: mq.NopProducer{}}

	if needsRedis(cfg) {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		r.Redis = rdb
	}

	builder, err := service.NewTxBuilder(client, cfg.Chain.ChainID, cfg.Tx)
	if err != nil {
		r.closeAux()
		return nil, err
	}

	var opts []service.SubmitterOption
	switch cfg.Events.Publisher {
	case "redis":
		logger.Info("使用 Redis Streams 作为事件队列...", zap.String("topic", cfg.Events.Topic))
		r.Producer = mq.NewRedisProducer(r.Redis)
		opts = append(opts, service.WithEvents(r.Producer, "redis", cfg.Events.Topic))
	case "kafka":
		logger.Info("使用 Kafka 作为事件队列...", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Events.Topic))
		r.Producer = mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Events.Topic)
		opts = append(opts, service.WithEvents(r.Producer, "kafka", cfg.Events.Topic))
	}

	if cfg.Relay.SerializeSenders {
		var l lock.DistributedLock
		if cfg.Relay.LockBackend == "redis" {
			l = lock.NewRedisLock(r.Redis)
		} else {
			l = lock.NewLocalLock()
		}
		logger.Info("Per-sender serialisation enabled", zap.String("backend", cfg.Relay.LockBackend), zap.Duration("ttl", cfg.Relay.LockTTL))
		opts = append(opts, service.WithSenderLock(l, cfg.Relay.LockTTL))
	}

	r.Builder = builder
	r.Signer = service.NewSigner()
	r.Submitter = service.NewSubmitter(builder, r.Signer, client, opts...)
	r.Voting = service.NewVotingService(r.Submitter)
	r.Reader = service.NewProposalReader(client)
	return r, nil
}

// NewConsumer returns the consumer matching the configured publisher.
func NewConsumer(ctx context.Context, cfg config.Config, group, name string) (mq.Consumer, error) {
	switch cfg.Events.Publisher {
	case "redis":
		rdb, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		// the consumer owns rdb and closes it
		return mq.NewRedisConsumer(rdb, group, name), nil
	case "kafka":
		return mq.NewKafkaConsumer(cfg.Kafka.Brokers, group), nil
	default:
		return nil, fmt.Errorf("events.publisher is %q; nothing to consume", cfg.Events.Publisher)
	}
}

// Close releases the node connection and any queue or redis clients.
func (r *Relay) Close() {
	r.closeAux()
	r.Client.Close()
}

func (r *Relay) closeAux() {
	if r.Producer != nil {
		if err := r.Producer.Close(); err != nil {
			logger.Warn("Close producer failed", zap.Error(err))
		}
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}

func needsRedis(cfg config.Config) bool {
	return cfg.Events.Publisher == "redis" ||
		(cfg.Relay.SerializeSenders && cfg.Relay.LockBackend == "redis")
}

