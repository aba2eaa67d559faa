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

package efring

import "github.com/fastpath-net/efring/ef10"

// getTxEvent reads the event at the current read position. It returns
// false when the slot has not been written yet (no new completions, not an
// error) and when a non-transmit event latches the Exception state. The
// read pointer is not advanced past such an event so the control path can
// inspect it through ExceptionEvent.
func (q *TxQueue) getTxEvent() (ef10.Event, bool) {
	event := q.evqRing[q.evqReadPtr&q.ptrMask]

	if !event.Present() {
		return event, false
	}

	if event.Code() != ef10.EvCodeTx {
		q.state = Exception
		q.stats.exceptions.Add(1)
		q.logger.Error().
			Uint32("evqReadPtr", q.evqReadPtr).
			Uint8("evCode", event.Code()).
			Msg("txq exception")

		return event, false
	}

	q.evqReadPtr++

	return event, true
}

// reap polls the event queue for transmit completions, releases the
// buffers of every newly completed descriptor and hands the consumed event
// slots back to the device. Completions are batched: each event reports
// the furthest finished descriptor, acknowledging everything before it.
// With no new completions reap is a no-op.
func (q *TxQueue) reap() {
	oldReadPtr := q.evqReadPtr
	ptrMask := q.ptrMask
	completed := q.completed
	pending := completed
	currDone := pending - 1
	anewDone := currDone

	for {
		event, ok := q.getTxEvent()
		if !ok {
			break
		}

		// Later events always report a further descriptor.
		anewDone = event.TxDescIndex()
	}
	pending += (anewDone - currDone) & ptrMask

	if pending != completed {
		q.stats.released.Add(uint64(pending - completed))

		for ; completed != pending; completed++ {
			slot := completed & ptrMask
			if pkt := q.shadowRing[slot]; pkt != nil {
				pkt.Release()
				q.shadowRing[slot] = nil
			}
		}
		q.completed = completed
	}

	ef10.ClearEvents(q.evqRing, ptrMask, oldReadPtr, q.evqReadPtr)
	q.stats.reaps.Add(1)
}
