// Copyright (c) 2024 The efring Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrRingSizeMismatch occurs when the descriptor and event rings have a different number of entries.
	ErrRingSizeMismatch = errors.New("descriptor and event rings must have equal entry counts")
	// ErrRingSizeNotPowerOfTwo occurs when the ring entry count cannot be used as an index mask.
	ErrRingSizeNotPowerOfTwo = errors.New("ring entries must be a power of two")
	// ErrRingTooSmall occurs when the ring cannot hold a single descriptor after reserved slots.
	ErrRingTooSmall = errors.New("ring has no usable capacity")
	// ErrRingMemoryShort occurs when the supplied ring memory holds fewer entries than requested.
	ErrRingMemoryShort = errors.New("ring memory is shorter than the entry count")
	// ErrNilDoorbell occurs when no doorbell register is supplied.
	ErrNilDoorbell = errors.New("doorbell register is nil")
	// ErrQueueNotStopped occurs when an operation requires a stopped queue.
	ErrQueueNotStopped = errors.New("queue is not stopped")
	// ErrQueueNotDrained occurs when destroying a queue that still owns packet buffers.
	ErrQueueNotDrained = errors.New("queue still owns packet buffers")
)

func ErrorRingSizeMismatch(txEntries, evqEntries uint32) error {
	return fmt.Errorf("%w, txq: %d, evq: %d", ErrRingSizeMismatch, txEntries, evqEntries)
}

func ErrorRingSizeNotPowerOfTwo(entries uint32) error {
	return fmt.Errorf("%w, entries: %d", ErrRingSizeNotPowerOfTwo, entries)
}

func ErrorRingMemoryShort(ring string, have int, want uint32) error {
	return fmt.Errorf("%w, ring: %s, have: %d, want: %d", ErrRingMemoryShort, ring, have, want)
}
