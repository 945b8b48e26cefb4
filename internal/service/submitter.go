package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mahd-Mehn/dao-voting/internal/chain"
	"github.com/Mahd-Mehn/dao-voting/internal/event"
	"github.com/Mahd-Mehn/dao-voting/internal/service/mq"
	"github.com/Mahd-Mehn/dao-voting/pkg/contract"
	"github.com/Mahd-Mehn/dao-voting/pkg/errno"
	"github.com/Mahd-Mehn/dao-voting/pkg/logger"
	"github.com/Mahd-Mehn/dao-voting/pkg/monitor"
	"github.com/Mahd-Mehn/dao-voting/pkg/secret"
	"github.com/Mahd-Mehn/dao-voting/pkg/utils/lock"
	"github.com/Mahd-Mehn/dao-voting/pkg/wallet/types"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	publishTimeout   = 5 * time.Second
	lockPollInterval = 50 * time.Millisecond
)

// Submitter runs build, sign and submit for one request. Without a sender
// lock, concurrent requests for the same key each fetch the nonce on their
// own and the node rejects all but one of them.
type Submitter struct {
	builder *TxBuilder
	signer  *Signer
	client  chain.Client

	producer      mq.Producer
	topic         string
	publisherName string

	senderLock lock.DistributedLock // nil: no serialisation
	lockTTL    time.Duration

	log *zap.Logger
}

type SubmitterOption func(*Submitter)

// WithEvents publishes a TransactionSubmittedEvent for every accepted
// transaction.
func WithEvents(p mq.Producer, name, topic string) SubmitterOption {
	return func(s *Submitter) {
		s.producer = p
		s.publisherName = name
		s.topic = topic
	}
}

// WithSenderLock allows one in-flight submission per sending address. The
// chain client must read the pending nonce.
func WithSenderLock(l lock.DistributedLock, ttl time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.senderLock = l
		s.lockTTL = ttl
	}
}

func NewSubmitter(builder *TxBuilder, signer *Signer, client chain.Client, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		builder:  builder,
		signer:   signer,
		client:   client,
		producer: mq.NopProducer{},
		log:      logger.Named("submitter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitCall signs spec with key and returns the transaction hash once the
// node accepts it into its mempool. key is destroyed on every return path.
func (s *Submitter) SubmitCall(ctx context.Context, spec contract.CallSpec, key *secret.PrivateKey) (txHash string, err error) {
	defer key.Destroy()
	defer func() {
		if err != nil {
			monitor.TxFailed(spec.Method, err)
		}
	}()

	if key == nil {
		return "", errno.ErrInvalidInput.WithMessage("missing private key")
	}
	sender := key.Address()

	if s.senderLock != nil {
		release, err := s.acquireSender(ctx, sender)
		if err != nil {
			return "", err
		}
		defer release()
	}

	utx, err := s.builder.Build(ctx, spec, sender)
	if err != nil {
		return "", err
	}
	signed, err := s.signer.Sign(utx, key)
	key.Destroy()
	if err != nil {
		return "", err
	}

	hash, err := s.client.SendRawTransaction(ctx, signed.RawTx)
	if err != nil {
		return "", err
	}

	monitor.TxSubmitted(spec.Method)
	s.log.Info("Transaction submitted",
		zap.String("tx_hash", hash.Hex()),
		zap.String("from", sender.Hex()),
		zap.String("method", spec.Method),
		zap.Uint64("nonce", utx.Nonce),
	)
	s.publish(ctx, utx, hash)
	return hash.Hex(), nil
}

func (s *Submitter) acquireSender(ctx context.Context, sender common.Address) (func(), error) {
	key := "relay:sender:" + sender.Hex()

	waitCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.lockTTL)
		defer cancel()
	}

	err := lock.AcquireWait(waitCtx, s.senderLock, key, s.lockTTL, lockPollInterval)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, errno.ErrSenderBusy.Wrapf("%s", sender.Hex())
	}
	if err != nil {
		return nil, errno.InternalServerError.Wrapf("sender lock: %w", err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := s.senderLock.Release(releaseCtx, key); err != nil {
			s.log.Warn("Release sender lock failed", zap.String("from", sender.Hex()), zap.Error(err))
		}
	}, nil
}

// publish is best effort: the transaction is already in the mempool.
func (s *Submitter) publish(ctx context.Context, utx *types.UnsignedTransaction, hash common.Hash) {
	if _, nop := s.producer.(mq.NopProducer); nop {
		return
	}

	payload, err := json.Marshal(event.TransactionSubmittedEvent{
		TxHash:    hash.Hex(),
		From:      utx.From.Hex(),
		Contract:  utx.To.Hex(),
		Method:    utx.Method,
		Nonce:     utx.Nonce,
		ChainID:   utx.ChainID.Int64(),
		Submitted: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("Marshal event failed", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.producer.Publish(pubCtx, s.topic, utx.From.Hex(), payload); err != nil {
		monitor.EventPublishFailed(s.publisherName)
		s.log.Warn("Publish event failed", zap.String("tx_hash", hash.Hex()), zap.Error(fmt.Errorf("%s: %w", s.publisherName, err)))
	}
}
