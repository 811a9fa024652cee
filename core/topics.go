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
	"github.com/defiweb/go-eth/abi"
	"github.com/defiweb/go-eth/hexutil"
	"github.com/defiweb/go-eth/types"
)

// EventTopic hashes the canonical form of an event signature, e.g.
// "Transfer(address,address,uint256)", into the value nodes store at topic
// position 0 of every log the event emits.
func EventTopic(signature string) (types.Hash, error) {
	event, err := abi.ParseEvent(signature)
	if err != nil {
		return types.Hash{}, &SignatureError{Signature: signature, Err: err}
	}
	return event.Topic0(), nil
}

// AddressTopic widens a 20-byte address into a 32-byte topic slot. Indexed
// address arguments occupy the low 20 bytes, the high 12 bytes are zero.
func AddressTopic(address types.Address) types.Hash {
	hash, err := types.HashFromBytes(address[:], types.PadLeft)
	if err != nil {
		// A left-padded 20-byte value always fits a hash.
		panic(err)
	}
	return hash
}

// ToWireHex renders bytes in the 0x-prefixed lowercase form filters carry
// on the wire, with no padding beyond the input length.
func ToWireHex(b []byte) string {
	return hexutil.BytesToHex(b)
}
