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

import (
	"testing"

	"github.com/fastpath-net/efring/ef10"
	. "github.com/stretchr/testify/require"
)

// testQueue bundles a queue with its rings and the device side of the
// contract: tests write completion events into the event ring the way
// hardware would.
type testQueue struct {
	queue    *TxQueue
	txRing   []ef10.Desc
	evqRing  []ef10.Event
	doorbell *ef10.Doorbell

	evqWritePtr uint32
	released    int
}

func newTestQueue(t *testing.T, entries, freeThresh uint32, opts ...ConfigOption) *testQueue {
	t.Helper()

	tq := &testQueue{
		txRing:   make([]ef10.Desc, entries),
		evqRing:  make([]ef10.Event, entries),
		doorbell: &ef10.Doorbell{},
	}
	ef10.InitEventRing(tq.evqRing)

	queue, err := NewTxQueue(CreateInfo{
		TxEntries:     entries,
		EvqEntries:    entries,
		FreeThreshold: freeThresh,
		TxRing:        tq.txRing,
		EvqRing:       tq.evqRing,
		Doorbell:      tq.doorbell,
	}, opts...)
	NoError(t, err)
	NoError(t, queue.Start(0, 0))

	tq.queue = queue

	return tq
}

// packet builds a packet with one segment per given length. Releases are
// counted on the harness.
func (tq *testQueue) packet(segLens ...uint32) *Packet {
	segs := make([]Segment, len(segLens))
	addr := uint64(0x10_0000)

	for i, segLen := range segLens {
		segs[i] = Segment{Addr: addr, Len: segLen}
		addr += uint64(segLen)
	}

	return NewPacket(func(*Packet) { tq.released++ }, segs...)
}

// complete posts a transmit completion acknowledging every descriptor up
// to and including lastDescIndex.
func (tq *testQueue) complete(lastDescIndex uint32) {
	tq.postEvent(ef10.NewTxEvent(lastDescIndex))
}

func (tq *testQueue) postEvent(event ef10.Event) {
	tq.evqRing[tq.evqWritePtr&tq.queue.ptrMask] = event
	tq.evqWritePtr++
}
