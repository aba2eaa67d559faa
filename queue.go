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

// Package efring implements the transmit datapath of an EF10-style NIC: a
// single-producer descriptor ring, its paired completion event ring and the
// doorbell notification in between. The device-management layer supplies
// ring memory, a mapped doorbell register and queue geometry; this package
// moves packets into the ring and reclaims their buffers on completion.
//
// A queue is single-threaded by contract: exactly one goroutine drives
// Transmit and the lifecycle calls. The only concurrent actor is the device
// itself, synchronized through the doorbell's release ordering.
package efring

import (
	"math/bits"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fastpath-net/efring/ef10"
	"github.com/fastpath-net/efring/logger"
	efErrors "github.com/fastpath-net/efring/pkg/errors"
)

// reservedSlots keeps the producer from stepping on the consumer and
// leaves event queue room for one error and one flush event.
const reservedSlots = 3

// State is the queue lifecycle state. Transitions:
// Stopped -> Started -> (Exception -> Stopped) | Stopped.
type State int

const (
	// Stopped accepts no packets; the only state where Start, DrainAll
	// and Destroy are valid.
	Stopped State = iota
	// Started is the normal running state.
	Started
	// Exception latches when an unexpected event shows up in the
	// completion stream. No packets are admitted until Stop and Start.
	Exception
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Exception:
		return "exception"
	default:
		return "unknown"
	}
}

// CreateInfo carries the queue geometry and ring memory supplied by the
// device-management layer.
type CreateInfo struct {
	// Name labels the queue in logs and metrics.
	Name string
	// TxEntries and EvqEntries are the descriptor and event ring entry
	// counts. They must be equal and a power of two.
	TxEntries  uint32
	EvqEntries uint32
	// FreeThreshold is the free-descriptor watermark below which a reap
	// is forced before admitting packets. Zero picks a default.
	FreeThreshold uint32
	// TxRing and EvqRing are the device-visible rings. EvqRing must be
	// cleared (ef10.InitEventRing) before the queue is first started.
	TxRing  []ef10.Desc
	EvqRing []ef10.Event
	// Doorbell is the mapped TX descriptor update register.
	Doorbell *ef10.Doorbell
}

// TxQueue is a single transmit queue. All methods must be called from one
// goroutine; there is no internal locking.
type TxQueue struct {
	state      State
	ptrMask    uint32
	added      uint32
	completed  uint32
	freeThresh uint32
	evqReadPtr uint32

	shadowRing []*Packet
	txRing     []ef10.Desc
	evqRing    []ef10.Event
	doorbell   *ef10.Doorbell

	reapOnIdle bool
	stats      stats
	logger     zerolog.Logger
}

// NewTxQueue validates the supplied geometry and builds a queue in the
// Stopped state. Construction is all-or-nothing; on error nothing is
// retained.
func NewTxQueue(info CreateInfo, opts ...ConfigOption) (*TxQueue, error) {
	config := NewConfig(opts...)

	if info.TxEntries != info.EvqEntries {
		return nil, efErrors.ErrorRingSizeMismatch(info.TxEntries, info.EvqEntries)
	}
	if bits.OnesCount32(info.TxEntries) != 1 {
		return nil, efErrors.ErrorRingSizeNotPowerOfTwo(info.TxEntries)
	}
	if info.TxEntries <= reservedSlots {
		return nil, efErrors.ErrRingTooSmall
	}
	if len(info.TxRing) < int(info.TxEntries) {
		return nil, efErrors.ErrorRingMemoryShort("txq", len(info.TxRing), info.TxEntries)
	}
	if len(info.EvqRing) < int(info.EvqEntries) {
		return nil, efErrors.ErrorRingMemoryShort("evq", len(info.EvqRing), info.EvqEntries)
	}
	if info.Doorbell == nil {
		return nil, efErrors.ErrNilDoorbell
	}

	name := info.Name
	if name == "" {
		name = "txq"
	}
	freeThresh := info.FreeThreshold
	if freeThresh == 0 {
		freeThresh = (info.TxEntries - reservedSlots) / 2
	}

	queue := &TxQueue{
		state:      Stopped,
		ptrMask:    info.TxEntries - 1,
		freeThresh: freeThresh,
		shadowRing: make([]*Packet, info.TxEntries),
		txRing:     info.TxRing[:info.TxEntries],
		evqRing:    info.EvqRing[:info.EvqEntries],
		doorbell:   info.Doorbell,
		reapOnIdle: config.reapOnIdle,
		logger:     logger.NewLogger(name, config.loggerLevel, config.prettyLogger),
	}

	if config.metrics != nil {
		err := config.metrics.Register(newTxqCollector(queue, name))
		if err != nil {
			return nil, errors.Wrap(err, "registering queue metrics error")
		}
	}

	return queue, nil
}

// Entries returns the descriptor ring size.
func (q *TxQueue) Entries() uint32 {
	return q.ptrMask + 1
}

// UsableCapacity returns the number of descriptors that may be in flight
// at once, after reserved slots.
func (q *TxQueue) UsableCapacity() uint32 {
	return q.Entries() - reservedSlots
}

// State returns the current lifecycle state.
func (q *TxQueue) State() State {
	return q.state
}

// InFlight returns the number of descriptors written but not yet reaped.
func (q *TxQueue) InFlight() uint32 {
	return q.added - q.completed
}

// Start resets the producer and consumer positions and begins admitting
// packets. The positions come from the device-management layer: zero on a
// fresh queue, or the values persisted across a Stop on restart.
func (q *TxQueue) Start(evqReadPos, descPos uint32) error {
	if q.state != Stopped {
		return efErrors.ErrQueueNotStopped
	}

	q.evqReadPtr = evqReadPos
	q.added = descPos
	q.completed = descPos
	q.state = Started

	q.logger.Debug().
		Uint32("evqReadPos", evqReadPos).
		Uint32("descPos", descPos).
		Msg("queue started")

	return nil
}

// Stop ends packet admission and returns the event queue read position for
// the caller to persist across a restart. Stop also exits an Exception
// state; in-flight buffers stay owned until reaped or drained.
func (q *TxQueue) Stop() uint32 {
	q.state = Stopped

	q.logger.Debug().Uint32("evqReadPos", q.evqReadPtr).Msg("queue stopped")

	return q.evqReadPtr
}

// DrainAll releases every buffer still held in the shadow ring, whether or
// not the device ever completed it. Required on teardown of a queue that
// may hold descriptors the device will never complete; skipping it leaks
// every such buffer.
func (q *TxQueue) DrainAll() {
	var drained uint32

	for i := range q.shadowRing {
		if pkt := q.shadowRing[i]; pkt != nil {
			pkt.Release()
			q.shadowRing[i] = nil
			drained++
		}
	}
	q.completed = q.added
	q.state = Stopped

	q.stats.released.Add(uint64(drained))
	q.logger.Debug().Uint32("drained", drained).Msg("queue drained")
}

// Destroy releases the queue's references to ring memory. The queue must
// be stopped and drained first.
func (q *TxQueue) Destroy() error {
	if q.state != Stopped {
		return efErrors.ErrQueueNotStopped
	}
	for _, pkt := range q.shadowRing {
		if pkt != nil {
			return efErrors.ErrQueueNotDrained
		}
	}

	q.shadowRing = nil
	q.txRing = nil
	q.evqRing = nil
	q.doorbell = nil

	return nil
}

// ExceptionEvent is the control path's inspection hook: when the queue is
// in the Exception state it returns the offending event, which reap left
// unconsumed at the read position for exactly this purpose.
func (q *TxQueue) ExceptionEvent() (ef10.Event, bool) {
	if q.state != Exception {
		return ef10.EmptyEvent, false
	}

	return q.evqRing[q.evqReadPtr&q.ptrMask], true
}
