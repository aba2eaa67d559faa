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
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// stats are atomic only so a scrape from another goroutine reads torn-free
// values; the datapath itself stays single-threaded.
type stats struct {
	packets    atomic.Uint64
	descs      atomic.Uint64
	doorbells  atomic.Uint64
	reaps      atomic.Uint64
	released   atomic.Uint64
	exceptions atomic.Uint64
}

// Stats is a point-in-time snapshot of the queue's datapath counters.
type Stats struct {
	// Packets accepted by Transmit.
	Packets uint64
	// Descriptors written to the ring.
	Descriptors uint64
	// Doorbells written, one or two per non-empty Transmit call.
	Doorbells uint64
	// Reaps run, including no-op polls.
	Reaps uint64
	// Released buffers, via completion or drain.
	Released uint64
	// Exceptions latched from the completion stream.
	Exceptions uint64
}

// Stats returns a snapshot of the queue's counters.
func (q *TxQueue) Stats() Stats {
	return Stats{
		Packets:     q.stats.packets.Load(),
		Descriptors: q.stats.descs.Load(),
		Doorbells:   q.stats.doorbells.Load(),
		Reaps:       q.stats.reaps.Load(),
		Released:    q.stats.released.Load(),
		Exceptions:  q.stats.exceptions.Load(),
	}
}

// txqCollector implements prometheus.Collector, reading a Stats snapshot
// on each scrape.
type txqCollector struct {
	queue *TxQueue

	packetsTotal     *prometheus.Desc
	descriptorsTotal *prometheus.Desc
	doorbellsTotal   *prometheus.Desc
	reapsTotal       *prometheus.Desc
	releasedTotal    *prometheus.Desc
	exceptionsTotal  *prometheus.Desc
}

func newTxqCollector(queue *TxQueue, name string) *txqCollector {
	labels := prometheus.Labels{"queue": name}

	return &txqCollector{
		queue: queue,
		packetsTotal: prometheus.NewDesc("efring_tx_packets_total",
			"Packets accepted by the transmit datapath.", nil, labels),
		descriptorsTotal: prometheus.NewDesc("efring_tx_descriptors_total",
			"DMA descriptors written to the transmit ring.", nil, labels),
		doorbellsTotal: prometheus.NewDesc("efring_tx_doorbells_total",
			"Doorbell writes published to the device.", nil, labels),
		reapsTotal: prometheus.NewDesc("efring_tx_reaps_total",
			"Completion ring polls, including empty ones.", nil, labels),
		releasedTotal: prometheus.NewDesc("efring_tx_released_total",
			"Packet buffers released back to the allocator.", nil, labels),
		exceptionsTotal: prometheus.NewDesc("efring_tx_exceptions_total",
			"Unexpected events latched from the completion stream.", nil, labels),
	}
}

func (c *txqCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsTotal
	ch <- c.descriptorsTotal
	ch <- c.doorbellsTotal
	ch <- c.reapsTotal
	ch <- c.releasedTotal
	ch <- c.exceptionsTotal
}

func (c *txqCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.queue.Stats()

	ch <- prometheus.MustNewConstMetric(c.packetsTotal, prometheus.CounterValue, float64(stats.Packets))
	ch <- prometheus.MustNewConstMetric(c.descriptorsTotal, prometheus.CounterValue, float64(stats.Descriptors))
	ch <- prometheus.MustNewConstMetric(c.doorbellsTotal, prometheus.CounterValue, float64(stats.Doorbells))
	ch <- prometheus.MustNewConstMetric(c.reapsTotal, prometheus.CounterValue, float64(stats.Reaps))
	ch <- prometheus.MustNewConstMetric(c.releasedTotal, prometheus.CounterValue, float64(stats.Released))
	ch <- prometheus.MustNewConstMetric(c.exceptionsTotal, prometheus.CounterValue, float64(stats.Exceptions))
}
