package event

import "time"

// TransactionSubmittedEvent 交易已被节点接收
// Topic: relay_events_tx_submitted (events.topic)
// Key: sender address
type TransactionSubmittedEvent struct {
	TxHash    string    `json:"tx_hash"`
	From      string    `json:"from"`
	Contract  string    `json:"contract"`
	Method    string    `json:"method"`
	Nonce     uint64    `json:"nonce"`
	ChainID   int64     `json:"chain_id"`
	Submitted time.Time `json:"submitted_at"`
}
