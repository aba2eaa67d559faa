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

// segDescs returns the number of descriptors one segment needs. A
// zero-length segment still takes a descriptor, so a packet always has a
// last descriptor to carry ownership and the end-of-packet flag.
func segDescs(length uint32) uint32 {
	if length == 0 {
		return 1
	}

	return (length + ef10.DescLenMax - 1) / ef10.DescLenMax
}

// descDemand returns the exact number of descriptors a packet needs.
func descDemand(pkt *Packet) uint32 {
	var demand uint32
	for _, seg := range pkt.Segments() {
		demand += segDescs(seg.Len)
	}

	return demand
}

// push writes the doorbell, publishing descriptors up to added. The
// inlined descriptor is the first one the device has not seen yet.
func (q *TxQueue) push(added uint32) {
	q.doorbell.Ring(added&q.ptrMask, q.txRing[q.added&q.ptrMask])
	q.added = added
	q.stats.doorbells.Add(1)
}

// Transmit drains packets into the descriptor ring in order and returns
// the number of packets accepted, always a strict prefix of the batch. A
// short count is backpressure, not an error; the caller retries the rest
// later. A packet is never partially admitted.
//
// At most one doorbell write is issued per call, after the batch is in the
// ring. Space is recovered by reaping completions at most twice per call:
// once when free descriptors fall below the configured watermark and once
// more, after flushing what was already written, when a packet does not
// fit.
func (q *TxQueue) Transmit(pkts []*Packet) int {
	if q.state != Started {
		return 0
	}

	ptrMask := q.ptrMask
	added := q.added
	descSpace := q.UsableCapacity() - (added - q.completed)

	reapDone := descSpace < q.freeThresh
	if reapDone {
		q.reap()
		descSpace = q.UsableCapacity() - (added - q.completed)
	}

	accepted := 0

	for _, pkt := range pkts {
		if len(pkt.Segments()) == 0 {
			// Nothing to send; the buffer goes straight back.
			pkt.Release()
			accepted++

			continue
		}

		demand := descDemand(pkt)

		if demand > descSpace {
			if reapDone {
				break
			}

			// Push what is already prepared so the device can
			// drain while we poll for completions.
			if added != q.added {
				q.push(added)
			}

			q.reap()
			reapDone = true
			descSpace = q.UsableCapacity() - (added - q.completed)
			if demand > descSpace {
				break
			}
		}

		pktStart := added
		segs := pkt.Segments()

		for i, seg := range segs {
			addr := seg.Addr
			remaining := seg.Len
			lastSeg := i == len(segs)-1

			for {
				size := remaining
				if size > ef10.DescLenMax {
					size = ef10.DescLenMax
				}
				remaining -= size

				eop := lastSeg && remaining == 0
				q.txRing[added&ptrMask] = ef10.NewTxDesc(addr, uint16(size), eop)
				added++
				addr += uint64(size)

				if remaining == 0 {
					break
				}
			}
		}

		descSpace -= added - pktStart

		// Ownership rides on the packet's last descriptor.
		q.shadowRing[(added-1)&ptrMask] = pkt
		accepted++
	}

	if accepted > 0 {
		q.stats.packets.Add(uint64(accepted))
	}
	if added != q.added {
		q.stats.descs.Add(uint64(added - q.added))
		q.push(added)
	}

	if q.reapOnIdle && !reapDone {
		q.reap()
	}

	return accepted
}
