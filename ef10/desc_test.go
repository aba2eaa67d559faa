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

package ef10_test

import (
	"testing"

	"github.com/fastpath-net/efring/ef10"
	. "github.com/stretchr/testify/require"
)

func TestTxDescRoundTrip(t *testing.T) {
	desc := ef10.NewTxDesc(0x1234_5678_9abc, 1500, true)

	Equal(t, uint64(0x1234_5678_9abc), desc.Addr())
	Equal(t, uint16(1500), desc.ByteCount())
	False(t, desc.Cont())
}

func TestTxDescContinuation(t *testing.T) {
	desc := ef10.NewTxDesc(0xdead_beef, 64, false)

	Equal(t, uint64(0xdead_beef), desc.Addr())
	Equal(t, uint16(64), desc.ByteCount())
	True(t, desc.Cont())
}

func TestTxDescMaxLen(t *testing.T) {
	desc := ef10.NewTxDesc(0, ef10.DescLenMax, true)

	Equal(t, uint16(ef10.DescLenMax), desc.ByteCount())
}

func TestTxDescAddrMasked(t *testing.T) {
	// Only 48 address bits are representable.
	desc := ef10.NewTxDesc(^uint64(0), 1, true)

	Equal(t, uint64(1)<<48-1, desc.Addr())
}

func TestDescRing(t *testing.T) {
	words := make([]uint64, 8)
	ring := ef10.DescRing(words)

	ring[3] = ef10.NewTxDesc(0x1000, 42, true)

	Len(t, ring, 8)
	Equal(t, uint64(ring[3]), words[3])
	Nil(t, ef10.DescRing(nil))
}
