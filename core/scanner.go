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

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"
)

// RangeScanner queries historical logs over a block range. It never waits:
// each operation is a single request returned verbatim.
type RangeScanner struct {
	client RpcClient
}

func NewRangeScanner(client RpcClient) *RangeScanner {
	return &RangeScanner{client: client}
}

// resolveEndBlock pins the upper bound of a scan. An absent end block is
// resolved once, up front, to the node's current finalized height; it is
// never re-resolved during the call.
func (s *RangeScanner) resolveEndBlock(ctx context.Context, endBlock *big.Int) (*big.Int, error) {
	if endBlock != nil {
		return endBlock, nil
	}
	finalized, err := s.client.FinalizedBlockNumber(ctx)
	if err != nil {
		ErrorsCounter.WithLabelValues("finalized_block").Inc()
		return nil, fmt.Errorf("failed to resolve finalized block: %w", err)
	}
	if finalized == nil {
		ErrorsCounter.WithLabelValues("finalized_block").Inc()
		return nil, fmt.Errorf("node reports no finalized block")
	}
	return finalized, nil
}

// CheckForEvents returns all logs any of the given event signatures emitted
// between startBlock and endBlock inclusive. A nil endBlock means "up to
// the finalized height".
//
// The signatures are alternatives at topic position 0: a log matches if it
// carries any of them. This is deliberately different from the waiter's
// grouping, where successive groups constrain successive positions.
func (s *RangeScanner) CheckForEvents(
	ctx context.Context,
	startBlock *big.Int,
	endBlock *big.Int,
	addresses []types.Address,
	events []string,
) ([]types.Log, error) {
	toBlock, err := s.resolveEndBlock(ctx, endBlock)
	if err != nil {
		return nil, err
	}

	sigs := make([]types.Hash, 0, len(events))
	for _, event := range events {
		topic0, err := EventTopic(event)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, topic0)
	}

	query := NewLogFilter(addresses, startBlock, toBlock, [][]types.Hash{sigs})
	logs, err := s.client.GetLogs(ctx, query)
	if err != nil {
		ErrorsCounter.WithLabelValues("get_logs").Inc()
		return nil, fmt.Errorf("failed to scan blocks %v-%v: %w", startBlock, toBlock, err)
	}

	logger.Debugf("Scanned blocks %v-%v: %d logs", startBlock, toBlock, len(logs))
	LastScannedBlockGauge.Set(float64(toBlock.Uint64()))
	return logs, nil
}

// CheckForArbitraryEvents is the raw variant of CheckForEvents: the caller
// supplies topic groups laid out positionally, exactly as a filter carries
// them (group i at position i, nil for wildcard, OR within a group).
func (s *RangeScanner) CheckForArbitraryEvents(
	ctx context.Context,
	startBlock *big.Int,
	endBlock *big.Int,
	addresses []types.Address,
	topicGroups [][]types.Hash,
) ([]types.Log, error) {
	toBlock, err := s.resolveEndBlock(ctx, endBlock)
	if err != nil {
		return nil, err
	}

	query := NewLogFilter(addresses, startBlock, toBlock, topicGroups)
	logs, err := s.client.GetLogs(ctx, query)
	if err != nil {
		ErrorsCounter.WithLabelValues("get_logs").Inc()
		return nil, fmt.Errorf("failed to scan blocks %v-%v: %w", startBlock, toBlock, err)
	}

	LastScannedBlockGauge.Set(float64(toBlock.Uint64()))
	return logs, nil
}

// CheckForEvent probes whether a single contract has ever emitted the given
// event with the given indexed arguments. Returns the first matching log,
// or nil if the event has not happened.
func (s *RangeScanner) CheckForEvent(
	ctx context.Context,
	address types.Address,
	event string,
	topic1 []types.Hash,
	topic2 []types.Hash,
) (*types.Log, error) {
	topic0, err := EventTopic(event)
	if err != nil {
		return nil, err
	}

	query := NewLogFilter(
		[]types.Address{address},
		nil,
		nil,
		[][]types.Hash{{topic0}, topic1, topic2},
	)
	logs, err := s.client.GetLogs(ctx, query)
	if err != nil {
		ErrorsCounter.WithLabelValues("get_logs").Inc()
		return nil, fmt.Errorf("failed to check for %q: %w", event, err)
	}
	if len(logs) == 0 {
		return nil, nil
	}
	log := logs[0]
	return &log, nil
}
