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
	"math/big"

	"github.com/defiweb/go-eth/types"
)

// NewLogFilter assembles a log filter query from contract addresses, an
// optional inclusive block range and an ordered list of topic groups.
//
// A nil group matches anything at its position; values within a group are
// alternatives (OR), while separate positions must all match (AND). Position
// 0 is conventionally the event signature hash. Semantic validity of the
// values is the caller's business; use EventTopic and AddressTopic to
// produce them.
func NewLogFilter(
	addresses []types.Address,
	fromBlock *big.Int,
	toBlock *big.Int,
	topicGroups [][]types.Hash,
) *types.FilterLogsQuery {
	query := &types.FilterLogsQuery{
		Address: addresses,
	}
	if fromBlock != nil {
		query.FromBlock = types.BlockNumberFromBigIntPtr(fromBlock)
	}
	if toBlock != nil {
		query.ToBlock = types.BlockNumberFromBigIntPtr(toBlock)
	}
	if len(topicGroups) > 0 {
		query.Topics = make([][]types.Hash, len(topicGroups))
		copy(query.Topics, topicGroups)
	}
	return query
}
