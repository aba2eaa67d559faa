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

// Package ef10 implements the EF10 transmit-side hardware layouts: DMA
// descriptors, completion events and the descriptor update (doorbell)
// register. All layouts are bit-exact; the device reads and writes these
// words directly.
package ef10

import "unsafe"

const (
	descContLBN      = 62
	descByteCntLBN   = 48
	descByteCntWidth = 14
	descBufAddrWidth = 48
)

// DescLenMax is the largest byte count a single descriptor can carry.
// Longer buffer segments must be split across descriptors.
const DescLenMax = 1<<descByteCntWidth - 1

// Desc is a single transmit DMA descriptor. The physical-addressing (KER)
// format is used: type bit 63 is zero, bit 62 is the continuation flag,
// bits 61:48 the byte count and bits 47:0 the DMA address.
type Desc uint64

// NewTxDesc packs one DMA transfer into a descriptor word. The size must
// not exceed DescLenMax; eop marks the last descriptor of a packet.
func NewTxDesc(addr uint64, size uint16, eop bool) Desc {
	var cont Desc
	if !eop {
		cont = 1 << descContLBN
	}

	return cont |
		Desc(size&DescLenMax)<<descByteCntLBN |
		Desc(addr&(1<<descBufAddrWidth-1))
}

// Addr returns the DMA address field.
func (d Desc) Addr() uint64 {
	return uint64(d) & (1<<descBufAddrWidth - 1)
}

// ByteCount returns the transfer length field.
func (d Desc) ByteCount() uint16 {
	return uint16(d>>descByteCntLBN) & DescLenMax
}

// Cont reports whether the buffer continues in the next descriptor.
func (d Desc) Cont() bool {
	return d&(1<<descContLBN) != 0
}

// DescRing reinterprets raw qword ring memory as a descriptor ring.
func DescRing(words []uint64) []Desc {
	if len(words) == 0 {
		return nil
	}

	return unsafe.Slice((*Desc)(unsafe.Pointer(&words[0])), len(words))
}
