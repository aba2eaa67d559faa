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
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fastpath-net/efring/ef10"
	. "github.com/stretchr/testify/require"
)

func newMetricsQueue(t *testing.T, registry *prometheus.Registry, name string) (*TxQueue, *testQueue) {
	t.Helper()

	tq := &testQueue{
		txRing:   make([]ef10.Desc, 16),
		evqRing:  make([]ef10.Event, 16),
		doorbell: &ef10.Doorbell{},
	}
	ef10.InitEventRing(tq.evqRing)

	queue, err := NewTxQueue(CreateInfo{
		Name:          name,
		TxEntries:     16,
		EvqEntries:    16,
		FreeThreshold: 1,
		TxRing:        tq.txRing,
		EvqRing:       tq.evqRing,
		Doorbell:      tq.doorbell,
	}, WithMetrics(registry))
	NoError(t, err)
	NoError(t, queue.Start(0, 0))
	tq.queue = queue

	return queue, tq
}

func TestMetricsCollector(t *testing.T) {
	registry := prometheus.NewPedanticRegistry()
	queue, tq := newMetricsQueue(t, registry, "txq0")

	Equal(t, 2, queue.Transmit([]*Packet{tq.packet(64), tq.packet(64, 64)}))
	tq.complete(2)
	queue.reap()

	expected := `
		# HELP efring_tx_packets_total Packets accepted by the transmit datapath.
		# TYPE efring_tx_packets_total counter
		efring_tx_packets_total{queue="txq0"} 2
		# HELP efring_tx_descriptors_total DMA descriptors written to the transmit ring.
		# TYPE efring_tx_descriptors_total counter
		efring_tx_descriptors_total{queue="txq0"} 3
		# HELP efring_tx_doorbells_total Doorbell writes published to the device.
		# TYPE efring_tx_doorbells_total counter
		efring_tx_doorbells_total{queue="txq0"} 1
		# HELP efring_tx_released_total Packet buffers released back to the allocator.
		# TYPE efring_tx_released_total counter
		efring_tx_released_total{queue="txq0"} 2
	`
	NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"efring_tx_packets_total",
		"efring_tx_descriptors_total",
		"efring_tx_doorbells_total",
		"efring_tx_released_total",
	))
}

func TestMetricsDuplicateQueueName(t *testing.T) {
	registry := prometheus.NewRegistry()
	newMetricsQueue(t, registry, "txq0")

	info := validCreateInfo(16)
	info.Name = "txq0"

	_, err := NewTxQueue(info, WithMetrics(registry))
	Error(t, err)
}

func TestStatsSnapshot(t *testing.T) {
	tq := newTestQueue(t, 16, 1)

	Equal(t, 1, tq.queue.Transmit([]*Packet{tq.packet(64)}))
	tq.complete(0)
	tq.queue.reap()

	stats := tq.queue.Stats()
	Equal(t, uint64(1), stats.Packets)
	Equal(t, uint64(1), stats.Descriptors)
	Equal(t, uint64(1), stats.Doorbells)
	Equal(t, uint64(1), stats.Released)
	Equal(t, uint64(1), stats.Reaps)
	Equal(t, uint64(0), stats.Exceptions)
}
