package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testTxWaiter(client RpcClient) *TxWaiter {
	w := NewTxWaiter(client)
	w.pollInterval = 5 * time.Millisecond
	return w
}

func TestWaitForTransaction(t *testing.T) {
	client := new(mockRpcClient)
	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000aa", types.PadNone)
	want := &types.OnChainTransaction{}

	// Absent until the node has indexed it.
	client.On("TransactionByHash", mock.Anything, hash).Return(nil, nil).Twice()
	client.On("TransactionByHash", mock.Anything, hash).Return(want, nil).Once()

	tx, err := testTxWaiter(client).WaitForTransaction(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, want, tx)
	client.AssertNumberOfCalls(t, "TransactionByHash", 3)
}

func TestWaitForTransactionPropagatesErrors(t *testing.T) {
	client := new(mockRpcClient)
	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000aa", types.PadNone)

	client.On("TransactionByHash", mock.Anything, hash).Return(nil, fmt.Errorf("node gone")).Once()

	_, err := testTxWaiter(client).WaitForTransaction(context.Background(), hash)
	require.Error(t, err)
	assert.ErrorContains(t, err, "node gone")
}

func TestWaitForTransactionHonorsContext(t *testing.T) {
	client := new(mockRpcClient)
	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000aa", types.PadNone)

	client.On("TransactionByHash", mock.Anything, hash).Return(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// No timeout of its own; the caller's deadline is the only bound.
	_, err := testTxWaiter(client).WaitForTransaction(ctx, hash)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
