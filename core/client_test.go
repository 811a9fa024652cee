package core

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records every call and answers each method with a canned
// JSON result, the way a node would.
type fakeTransport struct {
	calls   []fakeCall
	results map[string]string
}

type fakeCall struct {
	method string
	args   []any
}

func (t *fakeTransport) Call(ctx context.Context, result any, method string, args ...any) error {
	t.calls = append(t.calls, fakeCall{method: method, args: args})
	resp, ok := t.results[method]
	if !ok {
		return nil
	}
	return json.Unmarshal([]byte(resp), result)
}

// marshalArg renders a parameter the way the transport would put it on the
// wire.
func marshalArg(t *testing.T, arg any) string {
	t.Helper()
	b, err := json.Marshal(arg)
	require.NoError(t, err)
	return string(b)
}

func TestClientQuantityEncoding(t *testing.T) {
	transport := &fakeTransport{results: map[string]string{
		"eth_getFilterChanges": `[]`,
		"eth_getBalance":       `"0x10"`,
	}}
	client := NewClient(transport, 1)

	// Quantities travel as unpadded hex.
	_, err := client.FilterChanges(context.Background(), big.NewInt(255))
	require.NoError(t, err)
	assert.Equal(t, `"0xff"`, marshalArg(t, transport.calls[0].args[0]))

	balance, err := client.Balance(context.Background(), types.MustAddressFromHex("0x1F7acDa376eF37EC371235a094113dF9Cb4EfEe1"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), balance)
}

func TestClientHashEncoding(t *testing.T) {
	transport := &fakeTransport{results: map[string]string{
		"eth_getTransactionByHash": `null`,
		"evm_revert":               `true`,
	}}
	client := NewClient(transport, 1)

	hash := types.MustHashFromHex("0x00000000000000000000000000000000000000000000000000000000000000aa", types.PadNone)
	tx, err := client.TransactionByHash(context.Background(), hash)
	require.NoError(t, err)

	// Absent until indexed.
	assert.Nil(t, tx)

	// Hash-keyed parameters travel zero-padded to 32 bytes.
	assert.Equal(
		t,
		`"0x00000000000000000000000000000000000000000000000000000000000000aa"`,
		marshalArg(t, transport.calls[0].args[0]),
	)

	// Snapshot IDs are hash-keyed too, even though they arrive as
	// quantities.
	ok, err := client.RevertEVM(context.Background(), big.NewInt(1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(
		t,
		`"0x0000000000000000000000000000000000000000000000000000000000000001"`,
		marshalArg(t, transport.calls[1].args[0]),
	)
}

func TestClientFinalizedBlockNumber(t *testing.T) {
	transport := &fakeTransport{results: map[string]string{
		"eth_getBlockByNumber": `{"number":"0x64"}`,
	}}
	client := NewClient(transport, 1)

	number, err := client.FinalizedBlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), number)

	require.Len(t, transport.calls, 1)
	assert.Equal(t, "eth_getBlockByNumber", transport.calls[0].method)
	assert.Equal(t, "finalized", transport.calls[0].args[0])
	assert.Equal(t, false, transport.calls[0].args[1])
}

func TestClientFinalizedBlockNumberAbsent(t *testing.T) {
	transport := &fakeTransport{results: map[string]string{
		"eth_getBlockByNumber": `null`,
	}}
	client := NewClient(transport, 1)

	// A node without finality answers with null; that is an error, not a
	// nil height.
	_, err := client.FinalizedBlockNumber(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "finalized")
}

func TestClientFilterLifecycleMethods(t *testing.T) {
	transport := &fakeTransport{results: map[string]string{
		"eth_newFilter":       `"0x7"`,
		"eth_uninstallFilter": `true`,
	}}
	client := NewClient(transport, 1)

	query := NewLogFilter(nil, nil, nil, nil)
	id, err := client.NewFilter(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), id)

	removed, err := client.UninstallFilter(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, `"0x7"`, marshalArg(t, transport.calls[1].args[0]))
}
