package core

import (
	"context"
	"time"

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"
)

// TxWaiter blocks until a submitted transaction becomes observable
// on-chain.
type TxWaiter struct {
	client       RpcClient
	pollInterval time.Duration
}

func NewTxWaiter(client RpcClient) *TxWaiter {
	return &TxWaiter{
		client:       client,
		pollInterval: DefaultPollInterval,
	}
}

// WaitForTransaction polls for the transaction record by hash once per
// interval and returns as soon as the node reports one. It has no timeout
// of its own: liveness wins over bounded latency here, so a caller needing
// a bound must put a deadline on ctx.
func (w *TxWaiter) WaitForTransaction(ctx context.Context, hash types.Hash) (*types.OnChainTransaction, error) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			logger.WithField("txHash", hash).Tracef("Checking for transaction")
			tx, err := w.client.TransactionByHash(ctx, hash)
			if err != nil {
				ErrorsCounter.WithLabelValues("transaction_by_hash").Inc()
				return nil, err
			}
			if tx == nil {
				// Not indexed yet, keep trying.
				continue
			}
			return tx, nil
		}
	}
}
