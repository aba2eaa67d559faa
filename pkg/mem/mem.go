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

// Package mem allocates page-aligned ring memory outside the Go heap, the
// way the device-management layer hands descriptor and event rings to a
// queue.
package mem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const qwordSize = 8

func pageAlign(size int) int {
	pageSize := unix.Getpagesize()

	return (size + pageSize - 1) &^ (pageSize - 1)
}

// AllocQWords maps an anonymous, zeroed, page-aligned region holding n
// 8-byte ring entries. The mapping is not managed by the Go allocator, so
// the device can be given its physical pages without the runtime moving
// them.
func AllocQWords(n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}

	data, err := unix.Mmap(-1, 0, pageAlign(n*qwordSize),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	return unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), n), nil
}

// FreeQWords unmaps a region returned by AllocQWords.
func FreeQWords(words []uint64) error {
	if len(words) == 0 {
		return nil
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), pageAlign(len(words)*qwordSize))

	return unix.Munmap(data)
}
