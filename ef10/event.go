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

package ef10

import "unsafe"

const (
	evCodeLBN          = 60
	evCodeWidth        = 4
	evTxDescIndexWidth = 16
)

// Event codes delivered on a transmit event queue.
const (
	EvCodeRx     uint8 = 0x0
	EvCodeTx     uint8 = 0x2
	EvCodeDriver uint8 = 0x5
	EvCodeDrvGen uint8 = 0x7
	EvCodeMCDI   uint8 = 0xc
)

// Event is a single event queue entry. A slot the device has not written
// since it was last cleared reads as all-ones.
type Event uint64

// EmptyEvent is the cleared slot value. No valid event is all-ones.
const EmptyEvent = ^Event(0)

// NewTxEvent builds a transmit completion reporting the index of the last
// descriptor the device has finished with. Hardware writes these; software
// builds them only in tests and simulated devices.
func NewTxEvent(lastDescIndex uint32) Event {
	return Event(EvCodeTx)<<evCodeLBN |
		Event(lastDescIndex&(1<<evTxDescIndexWidth-1))
}

// NewEvent builds an event of an arbitrary code with raw payload bits.
func NewEvent(code uint8, data uint64) Event {
	return Event(code&(1<<evCodeWidth-1))<<evCodeLBN |
		Event(data&(1<<evCodeLBN-1))
}

// Present reports whether the device has written this slot since it was
// last cleared.
func (e Event) Present() bool {
	return e != EmptyEvent
}

// Code returns the event code field.
func (e Event) Code() uint8 {
	return uint8(e>>evCodeLBN) & (1<<evCodeWidth - 1)
}

// TxDescIndex returns the last completed descriptor index reported by a
// transmit completion. Completions are batched: the index acknowledges
// every descriptor up to and including it.
func (e Event) TxDescIndex() uint32 {
	return uint32(e) & (1<<evTxDescIndexWidth - 1)
}

// ClearEvents marks event ring slots [oldRead, newRead) as available for
// device reuse. Positions are free-running and wrapped with mask.
func ClearEvents(ring []Event, mask, oldRead, newRead uint32) {
	for ptr := oldRead; ptr != newRead; ptr++ {
		ring[ptr&mask] = EmptyEvent
	}
}

// InitEventRing clears every slot of a freshly allocated event ring. Ring
// memory handed to a queue must be cleared before the queue is first
// started; zeroed memory would read as present events.
func InitEventRing(ring []Event) {
	for i := range ring {
		ring[i] = EmptyEvent
	}
}

// EventRing reinterprets raw qword ring memory as an event ring.
func EventRing(words []uint64) []Event {
	if len(words) == 0 {
		return nil
	}

	return unsafe.Slice((*Event)(unsafe.Pointer(&words[0])), len(words))
}
