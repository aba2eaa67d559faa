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

import "sync/atomic"

const (
	// Write pointer field of the TX descriptor update register, bits
	// 107:96 of the 128-bit payload, so bits 43:32 of the high qword.
	dbWptrLBN   = 32
	dbWptrWidth = 12
)

// Doorbell is the TX descriptor update register. The 128-bit payload
// carries the ring-wrapped write pointer together with a copy of one newly
// written descriptor, letting the device start the transfer without
// re-reading the ring. The inlined descriptor is a hint only; if the
// device ignores it, it re-reads the ring.
type Doorbell struct {
	lo uint64
	hi uint64
}

// Ring publishes descriptors up to (but not including) ring position wptr.
// desc is the first descriptor of the newly written batch.
//
// Both stores are release stores and the pointer-carrying word goes last,
// so every prior descriptor and event ring write is visible to the device
// before it can observe the new write pointer.
func (db *Doorbell) Ring(wptr uint32, desc Desc) {
	atomic.StoreUint64(&db.lo, uint64(desc))
	atomic.StoreUint64(&db.hi, uint64(wptr&(1<<dbWptrWidth-1))<<dbWptrLBN)
}

// WritePointer returns the last published ring-wrapped write pointer.
// Read by the device (or a simulated one).
func (db *Doorbell) WritePointer() uint32 {
	return uint32(atomic.LoadUint64(&db.hi)>>dbWptrLBN) & (1<<dbWptrWidth - 1)
}

// InlineDesc returns the descriptor duplicated into the last notification.
func (db *Doorbell) InlineDesc() Desc {
	return Desc(atomic.LoadUint64(&db.lo))
}
