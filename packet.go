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

// Segment is one contiguous, DMA-mapped piece of packet data.
type Segment struct {
	Addr uint64
	Len  uint32
}

// Packet is an outbound packet buffer owned by an external allocator.
// Ownership passes to the queue when Transmit accepts the packet and
// returns to the allocator through the release callback, exactly once,
// on reap or drain.
type Packet struct {
	segs    []Segment
	release func(*Packet)
}

// NewPacket wraps allocator-owned segments. The release callback hands the
// buffer back to the allocator; a nil callback is allowed for buffers that
// need no reclamation.
func NewPacket(release func(*Packet), segs ...Segment) *Packet {
	return &Packet{segs: segs, release: release}
}

// Segments returns the packet's data segments.
func (p *Packet) Segments() []Segment {
	return p.segs
}

// Len returns the total packet length in bytes.
func (p *Packet) Len() uint32 {
	var total uint32
	for _, seg := range p.segs {
		total += seg.Len
	}

	return total
}

// Release returns the buffer to its allocator. Safe to call more than
// once; only the first call reaches the allocator.
func (p *Packet) Release() {
	if p.release == nil {
		return
	}

	release := p.release
	p.release = nil
	release(p)
}
