//  Copyright (C) 2023-2024 Quay Labs, Inc.
//
//  This program is free software: you can redistribute it and/or modify
//  it under the terms of the GNU Affero General Public License as
//  published by the Free Software Foundation, either version 3 of the
//  License, or (at your option) any later version.
//
//  This program is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU Affero General Public License for more details.
//
//  You should have received a copy of the GNU Affero General Public License
//  along with this program.  If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"context"
	"fmt"
	"math/big"

	"github.com/defiweb/go-eth/abi"
	"github.com/defiweb/go-eth/types"
	"github.com/defiweb/go-eth/wallet"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// txGasLimit is a conservative ceiling, not a simulation result. Unused gas
// is refunded, so overshooting only requires the sender balance to cover
// the ceiling.
const txGasLimit = 6721975

// TxPipeline assembles, signs and submits transactions. The chain ID is
// bound at construction and baked into every signature; a zero chain ID
// refuses to sign rather than guessing.
type TxPipeline struct {
	client  RpcClient
	chainID uint64
}

func NewTxPipeline(client RpcClient, chainID uint64) *TxPipeline {
	return &TxPipeline{client: client, chainID: chainID}
}

// fetchTxState reads the current gas price and the sender's nonce
// concurrently. Both are point-in-time observations with no consistency
// guarantee between them beyond "both current at call time".
func (p *TxPipeline) fetchTxState(ctx context.Context, from types.Address) (gasPrice, nonce *big.Int, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gasPrice, err = p.client.GasPrice(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		nonce, err = p.client.TransactionCount(ctx, from, types.LatestBlockNumber)
		return err
	})
	if err := g.Wait(); err != nil {
		ErrorsCounter.WithLabelValues("tx_state").Inc()
		return nil, nil, fmt.Errorf("failed to fetch chain state: %w", err)
	}
	return gasPrice, nonce, nil
}

func (p *TxPipeline) buildTransaction(
	to types.Address,
	data []byte,
	value *big.Int,
	from types.Address,
	gasPrice *big.Int,
	nonce *big.Int,
) *types.Transaction {
	tx := (&types.Transaction{}).
		SetChainID(p.chainID).
		SetFrom(from).
		SetTo(to).
		SetNonce(nonce.Uint64()).
		SetGasLimit(txGasLimit).
		SetGasPrice(gasPrice).
		SetInput(data)
	if value != nil {
		tx.SetValue(value)
	}
	return tx
}

// SendTransaction builds a state-changing transaction against the current
// gas price and nonce, signs it for the configured chain and submits the
// raw bytes. The returned hash identifies the submitted content; use
// TxWaiter to block until the node has indexed it.
func (p *TxPipeline) SendTransaction(
	ctx context.Context,
	to types.Address,
	data []byte,
	value *big.Int,
	from types.Address,
	key *wallet.PrivateKey,
) (*types.Hash, error) {
	if p.chainID == 0 {
		return nil, fmt.Errorf("chain id is not configured")
	}

	gasPrice, nonce, err := p.fetchTxState(ctx, from)
	if err != nil {
		return nil, err
	}

	tx := p.buildTransaction(to, data, value, from, gasPrice, nonce)
	if err := key.SignTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	raw, err := tx.Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	hash, err := p.client.SendRawTransaction(ctx, raw)
	if err != nil {
		ErrorsCounter.WithLabelValues("send_raw_transaction").Inc()
		return nil, err
	}
	TxSentCounter.Inc()
	logger.WithField("txHash", hash).Infof("Submitted transaction with nonce %v", nonce)
	return hash, nil
}

// ContractCall executes a read-only method on a contract and decodes the
// result as a single unsigned 256-bit word. The method signature uses the
// canonical form, e.g. "balanceOf(address)".
//
// Gas price and nonce are fetched exactly as on the transacting path; they
// carry no consensus weight here, the request just keeps the same shape.
// Returns a DecodeError if the node's answer is not exactly one word.
func (p *TxPipeline) ContractCall(
	ctx context.Context,
	contract types.Address,
	method string,
	args []any,
	from types.Address,
) (*big.Int, error) {
	m, err := abi.ParseMethod(method)
	if err != nil {
		return nil, &SignatureError{Signature: method, Err: err}
	}
	// The parser is lenient and will accept full ABI declarations; only the
	// canonical form is a valid selector source here.
	if m.Signature() != method {
		return nil, &SignatureError{
			Signature: method,
			Err:       fmt.Errorf("not a canonical method signature, parsed as %q", m.Signature()),
		}
	}
	calldata, err := m.EncodeArgs(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q args: %w", method, err)
	}

	gasPrice, nonce, err := p.fetchTxState(ctx, from)
	if err != nil {
		return nil, err
	}
	logger.Tracef("Calling %q from %v at nonce %v", method, from, nonce)

	result, err := p.client.Call(ctx, &types.Call{
		From:     &from,
		To:       &contract,
		GasPrice: gasPrice,
		Value:    big.NewInt(0),
		Input:    calldata,
	}, types.LatestBlockNumber)
	if err != nil {
		ErrorsCounter.WithLabelValues("call").Inc()
		return nil, fmt.Errorf("failed to call %q: %w", method, err)
	}

	if len(result) != 32 {
		return nil, &DecodeError{Want: 32, Got: len(result)}
	}
	return new(big.Int).SetBytes(result), nil
}
