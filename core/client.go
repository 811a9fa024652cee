package core

import (
	"context"
	"fmt"
	"math/big"

	"github.com/defiweb/go-eth/rpc/transport"
	"github.com/defiweb/go-eth/types"
)

// RpcClient is the node-facing surface consumed by the watchers, scanners
// and the transaction pipeline. It is implemented by Client and mocked in
// tests.
type RpcClient interface {
	Accounts(ctx context.Context) ([]types.Address, error)

	NetVersion(ctx context.Context) (string, error)

	BlockNumber(ctx context.Context) (*big.Int, error)

	FinalizedBlockNumber(ctx context.Context) (*big.Int, error)

	BlockByNumber(ctx context.Context, number types.BlockNumber, full bool) (*types.Block, error)

	GasPrice(ctx context.Context) (*big.Int, error)

	Balance(ctx context.Context, address types.Address) (*big.Int, error)

	TransactionCount(ctx context.Context, address types.Address, block types.BlockNumber) (*big.Int, error)

	NewFilter(ctx context.Context, query *types.FilterLogsQuery) (*big.Int, error)

	FilterChanges(ctx context.Context, filterID *big.Int) ([]types.Log, error)

	UninstallFilter(ctx context.Context, filterID *big.Int) (bool, error)

	GetLogs(ctx context.Context, query *types.FilterLogsQuery) ([]types.Log, error)

	Call(ctx context.Context, call *types.Call, block types.BlockNumber) ([]byte, error)

	SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error)

	SendRawTransaction(ctx context.Context, raw []byte) (*types.Hash, error)

	TransactionByHash(ctx context.Context, hash types.Hash) (*types.OnChainTransaction, error)
}

// Client is a thin typed layer over a JSON-RPC transport. It holds no
// mutable state, so a single instance is safe to share between any number
// of concurrent operations.
//
// Quantity-like values (balances, nonces, filter IDs, block numbers) travel
// as unpadded hex via types.Number; hash-shaped values travel zero-padded
// to 32 bytes via types.Hash. The distinction is carried by the parameter
// types, never by call-site formatting.
type Client struct {
	transport transport.Transport
	chainID   uint64
}

// NewClient creates a client on top of the given transport. The chain ID is
// deliberately an explicit input: a transaction signed for the wrong chain
// is rejected by the node, so it is never inferred from the endpoint.
func NewClient(t transport.Transport, chainID uint64) *Client {
	return &Client{transport: t, chainID: chainID}
}

// ChainID returns the chain ID the client signs transactions for.
func (c *Client) ChainID() uint64 {
	return c.chainID
}

func (c *Client) Accounts(ctx context.Context) ([]types.Address, error) {
	var out []types.Address
	if err := c.transport.Call(ctx, &out, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts failed: %w", err)
	}
	return out, nil
}

func (c *Client) NetVersion(ctx context.Context) (string, error) {
	var out string
	if err := c.transport.Call(ctx, &out, "net_version"); err != nil {
		return "", fmt.Errorf("net_version failed: %w", err)
	}
	return out, nil
}

func (c *Client) BlockNumber(ctx context.Context) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "eth_blockNumber"); err != nil {
		return nil, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	return out.Big(), nil
}

// FinalizedBlockNumber returns the height of the highest block the node
// considers settled.
func (c *Client) FinalizedBlockNumber(ctx context.Context) (*big.Int, error) {
	var out types.Block
	if err := c.transport.Call(ctx, &out, "eth_getBlockByNumber", "finalized", false); err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	// Nodes without finality answer with null.
	if out.Number == nil {
		return nil, fmt.Errorf("node reports no finalized block")
	}
	return out.Number, nil
}

func (c *Client) BlockByNumber(ctx context.Context, number types.BlockNumber, full bool) (*types.Block, error) {
	var out types.Block
	if err := c.transport.Call(ctx, &out, "eth_getBlockByNumber", number, full); err != nil {
		return nil, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	return &out, nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "eth_gasPrice"); err != nil {
		return nil, fmt.Errorf("eth_gasPrice failed: %w", err)
	}
	return out.Big(), nil
}

func (c *Client) Balance(ctx context.Context, address types.Address) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "eth_getBalance", address, types.LatestBlockNumber); err != nil {
		return nil, fmt.Errorf("eth_getBalance failed: %w", err)
	}
	return out.Big(), nil
}

func (c *Client) TransactionCount(ctx context.Context, address types.Address, block types.BlockNumber) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "eth_getTransactionCount", address, block); err != nil {
		return nil, fmt.Errorf("eth_getTransactionCount failed: %w", err)
	}
	return out.Big(), nil
}

// NewFilter registers a server-side log filter and returns its handle. The
// caller owns the handle and must release it with UninstallFilter;
// discarding it leaks resources on the node.
func (c *Client) NewFilter(ctx context.Context, query *types.FilterLogsQuery) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "eth_newFilter", query); err != nil {
		return nil, fmt.Errorf("eth_newFilter failed: %w", err)
	}
	return out.Big(), nil
}

// FilterChanges returns the logs matched by the filter since the previous
// poll. A log is delivered at most once per filter lifetime.
func (c *Client) FilterChanges(ctx context.Context, filterID *big.Int) ([]types.Log, error) {
	var out []types.Log
	if err := c.transport.Call(ctx, &out, "eth_getFilterChanges", types.NumberFromBigInt(filterID)); err != nil {
		return nil, fmt.Errorf("eth_getFilterChanges failed: %w", err)
	}
	return out, nil
}

func (c *Client) UninstallFilter(ctx context.Context, filterID *big.Int) (bool, error) {
	var out bool
	if err := c.transport.Call(ctx, &out, "eth_uninstallFilter", types.NumberFromBigInt(filterID)); err != nil {
		return false, fmt.Errorf("eth_uninstallFilter failed: %w", err)
	}
	return out, nil
}

func (c *Client) GetLogs(ctx context.Context, query *types.FilterLogsQuery) ([]types.Log, error) {
	var out []types.Log
	if err := c.transport.Call(ctx, &out, "eth_getLogs", query); err != nil {
		return nil, fmt.Errorf("eth_getLogs failed: %w", err)
	}
	return out, nil
}

func (c *Client) Call(ctx context.Context, call *types.Call, block types.BlockNumber) ([]byte, error) {
	var out types.Bytes
	if err := c.transport.Call(ctx, &out, "eth_call", call, block); err != nil {
		return nil, fmt.Errorf("eth_call failed: %w", err)
	}
	return out, nil
}

// SendTransaction submits an unsigned transaction for the node to sign with
// one of its own accounts. Prefer the pipeline's SendTransaction, which
// signs locally and submits raw bytes.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error) {
	var out types.Hash
	if err := c.transport.Call(ctx, &out, "eth_sendTransaction", tx); err != nil {
		return nil, fmt.Errorf("eth_sendTransaction failed: %w", err)
	}
	return &out, nil
}

// SendRawTransaction submits signed transaction bytes. The returned hash
// identifies the content; it is not a confirmation of inclusion.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (*types.Hash, error) {
	var out types.Hash
	if err := c.transport.Call(ctx, &out, "eth_sendRawTransaction", types.Bytes(raw)); err != nil {
		return nil, fmt.Errorf("eth_sendRawTransaction failed: %w", err)
	}
	return &out, nil
}

// TransactionByHash returns the node's record of the transaction, or nil
// while the node has not indexed it yet.
func (c *Client) TransactionByHash(ctx context.Context, hash types.Hash) (*types.OnChainTransaction, error) {
	var out *types.OnChainTransaction
	if err := c.transport.Call(ctx, &out, "eth_getTransactionByHash", hash); err != nil {
		return nil, fmt.Errorf("eth_getTransactionByHash failed: %w", err)
	}
	return out, nil
}

// SnapshotEVM takes a snapshot on development nodes that support the evm_
// namespace.
func (c *Client) SnapshotEVM(ctx context.Context) (*big.Int, error) {
	var out types.Number
	if err := c.transport.Call(ctx, &out, "evm_snapshot"); err != nil {
		return nil, fmt.Errorf("evm_snapshot failed: %w", err)
	}
	return out.Big(), nil
}

// RevertEVM rolls a development node back to a snapshot. Snapshot IDs are
// hash-keyed on the wire, so the value travels zero-padded to 32 bytes.
func (c *Client) RevertEVM(ctx context.Context, snapshotID *big.Int) (bool, error) {
	var buf [32]byte
	snapshotID.FillBytes(buf[:])
	id, err := types.HashFromBytes(buf[:], types.PadLeft)
	if err != nil {
		return false, fmt.Errorf("invalid snapshot id %v: %w", snapshotID, err)
	}
	var out bool
	if err := c.transport.Call(ctx, &out, "evm_revert", id); err != nil {
		return false, fmt.Errorf("evm_revert failed: %w", err)
	}
	return out, nil
}
