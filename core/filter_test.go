package core

import (
	"math/big"
	"testing"

	"github.com/defiweb/go-eth/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogFilter(t *testing.T) {
	address := types.MustAddressFromHex("0x1F7acDa376eF37EC371235a094113dF9Cb4EfEe1")
	topic0 := AddressTopic(address)

	query := NewLogFilter(
		[]types.Address{address},
		big.NewInt(100),
		big.NewInt(200),
		[][]types.Hash{{topic0}, nil, {topic0, topic0}},
	)

	assert.Equal(t, []types.Address{address}, query.Address)
	require.NotNil(t, query.FromBlock)
	assert.Equal(t, big.NewInt(100), query.FromBlock.Big())
	require.NotNil(t, query.ToBlock)
	assert.Equal(t, big.NewInt(200), query.ToBlock.Big())

	// Groups are preserved in order; nil stays a wildcard; values within a
	// group stay alternatives.
	require.Len(t, query.Topics, 3)
	assert.Equal(t, []types.Hash{topic0}, query.Topics[0])
	assert.Nil(t, query.Topics[1])
	assert.Len(t, query.Topics[2], 2)
}

func TestNewLogFilterOpenRange(t *testing.T) {
	query := NewLogFilter(nil, nil, nil, nil)

	assert.Nil(t, query.FromBlock)
	assert.Nil(t, query.ToBlock)
	assert.Nil(t, query.Topics)
}
