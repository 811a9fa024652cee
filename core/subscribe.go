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
	"math/big"

	"github.com/defiweb/go-eth/types"
	logger "github.com/sirupsen/logrus"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// WatchEvent is the push-based alternative to EventWatcher.WaitForEvent for
// nodes exposing a websocket endpoint: it subscribes to logs for the given
// event and returns the first one the matcher accepts. It blocks until a
// match, a subscription error, or ctx cancellation.
func WatchEvent(
	ctx context.Context,
	subscriptionURL string,
	addresses []types.Address,
	event string,
	matcher LogMatcher,
) (*types.Log, error) {
	topic0, err := EventTopic(event)
	if err != nil {
		return nil, err
	}

	ethcli, err := ethclient.Dial(subscriptionURL)
	if err != nil {
		return nil, err
	}
	defer ethcli.Close()

	var queryAddresses []common.Address
	for _, address := range addresses {
		queryAddresses = append(queryAddresses, common.HexToAddress(address.String()))
	}
	query := ethereum.FilterQuery{
		Addresses: queryAddresses,
		Topics:    [][]common.Hash{{common.BytesToHash(topic0[:])}},
	}

	logs := make(chan gethtypes.Log)
	sub, err := ethcli.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	logger.Infof("Subscribed to %q on %d contract(s)", event, len(queryAddresses))

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-sub.Err():
			ErrorsCounter.WithLabelValues("subscription").Inc()
			return nil, err
		case evlog := <-logs:
			log, err := convertLog(evlog)
			if err != nil {
				return nil, err
			}
			if matcher.Matches(*log) {
				EventsMatchedCounter.WithLabelValues(event).Inc()
				return log, nil
			}
			logger.Debugf("Log from block %d did not match", evlog.BlockNumber)
		}
	}
}

// convertLog marshals go-ethereum log data into go-eth types.
func convertLog(evlog gethtypes.Log) (*types.Log, error) {
	address, err := types.AddressFromBytes(evlog.Address.Bytes())
	if err != nil {
		return nil, err
	}

	topics := make([]types.Hash, 0, len(evlog.Topics))
	for _, topic := range evlog.Topics {
		t, err := types.HashFromBytes(topic.Bytes(), types.PadLeft)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}

	txHash, err := types.HashFromBytes(evlog.TxHash.Bytes(), types.PadLeft)
	if err != nil {
		return nil, err
	}

	logIndex := uint64(evlog.Index)
	return &types.Log{
		Address:         address,
		Topics:          topics,
		Data:            evlog.Data,
		BlockNumber:     new(big.Int).SetUint64(evlog.BlockNumber),
		TransactionHash: &txHash,
		LogIndex:        &logIndex,
	}, nil
}
