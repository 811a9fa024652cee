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
	"fmt"
	"math/big"
)

// SignatureError is returned when an event or method signature cannot be
// parsed into its canonical form.
type SignatureError struct {
	Signature string
	Err       error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid signature %q: %v", e.Signature, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// EventNotFoundError is returned when a budgeted wait ran out of time
// without any log passing the caller's matcher. It is an expected outcome,
// not a transport failure.
type EventNotFoundError struct {
	Event string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("event %q not found", e.Event)
}

// FilterTeardownError is returned when the uninstall call for a server-side
// filter failed and there was no matched log to report instead. The filter
// may keep consuming resources on the node.
type FilterTeardownError struct {
	FilterID *big.Int
	Err      error
}

func (e *FilterTeardownError) Error() string {
	return fmt.Sprintf("failed to uninstall filter %v: %v", e.FilterID, e.Err)
}

func (e *FilterTeardownError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when an RPC result does not have the shape the
// caller expected, e.g. a call result that is not exactly one word.
type DecodeError struct {
	Want int
	Got  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("expected %d-byte result, got %d bytes", e.Want, e.Got)
}
