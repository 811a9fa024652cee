package core

import (
	"context"
	"math/big"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/mock"
)

type mockRpcClient struct {
	mock.Mock
}

func (m *mockRpcClient) Accounts(ctx context.Context) ([]types.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).([]types.Address), args.Error(1)
}

func (m *mockRpcClient) NetVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRpcClient) BlockNumber(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockRpcClient) FinalizedBlockNumber(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	number := args.Get(0)
	if number == nil {
		return nil, args.Error(1)
	}
	return number.(*big.Int), args.Error(1)
}

func (m *mockRpcClient) BlockByNumber(ctx context.Context, number types.BlockNumber, full bool) (*types.Block, error) {
	args := m.Called(ctx, number, full)
	block := args.Get(0)
	if block == nil {
		return nil, args.Error(1)
	}
	return block.(*types.Block), args.Error(1)
}

func (m *mockRpcClient) GasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	price := args.Get(0)
	if price == nil {
		return nil, args.Error(1)
	}
	return price.(*big.Int), args.Error(1)
}

func (m *mockRpcClient) Balance(ctx context.Context, address types.Address) (*big.Int, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *mockRpcClient) TransactionCount(ctx context.Context, address types.Address, block types.BlockNumber) (*big.Int, error) {
	args := m.Called(ctx, address, block)
	count := args.Get(0)
	if count == nil {
		return nil, args.Error(1)
	}
	return count.(*big.Int), args.Error(1)
}

func (m *mockRpcClient) NewFilter(ctx context.Context, query *types.FilterLogsQuery) (*big.Int, error) {
	args := m.Called(ctx, query)
	id := args.Get(0)
	if id == nil {
		return nil, args.Error(1)
	}
	return id.(*big.Int), args.Error(1)
}

func (m *mockRpcClient) FilterChanges(ctx context.Context, filterID *big.Int) ([]types.Log, error) {
	args := m.Called(ctx, filterID)
	return args.Get(0).([]types.Log), args.Error(1)
}

func (m *mockRpcClient) UninstallFilter(ctx context.Context, filterID *big.Int) (bool, error) {
	args := m.Called(ctx, filterID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRpcClient) GetLogs(ctx context.Context, query *types.FilterLogsQuery) ([]types.Log, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]types.Log), args.Error(1)
}

func (m *mockRpcClient) Call(ctx context.Context, call *types.Call, block types.BlockNumber) ([]byte, error) {
	args := m.Called(ctx, call, block)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockRpcClient) SendTransaction(ctx context.Context, tx *types.Transaction) (*types.Hash, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(*types.Hash), args.Error(1)
}

func (m *mockRpcClient) SendRawTransaction(ctx context.Context, raw []byte) (*types.Hash, error) {
	args := m.Called(ctx, raw)
	hash := args.Get(0)
	if hash == nil {
		return nil, args.Error(1)
	}
	return hash.(*types.Hash), args.Error(1)
}

func (m *mockRpcClient) TransactionByHash(ctx context.Context, hash types.Hash) (*types.OnChainTransaction, error) {
	args := m.Called(ctx, hash)
	tx := args.Get(0)
	if tx == nil {
		return nil, args.Error(1)
	}
	return tx.(*types.OnChainTransaction), args.Error(1)
}
