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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type ConfigOption func(*Config)

type Config struct {
	reapOnIdle   bool
	loggerLevel  zerolog.Level
	prettyLogger bool
	metrics      prometheus.Registerer
}

// WithReapOnIdle forces one reap at the end of every Transmit call that did
// not reap on its own. Keeps buffer reclamation timely under bursty,
// infrequent traffic at the cost of a little extra work per call.
func WithReapOnIdle(reapOnIdle bool) ConfigOption {
	return func(c *Config) {
		c.reapOnIdle = reapOnIdle
	}
}

func WithLoggerLevel(loggerLevel zerolog.Level) ConfigOption {
	return func(c *Config) {
		c.loggerLevel = loggerLevel
	}
}

func WithPrettyLogger(prettyLogger bool) ConfigOption {
	return func(c *Config) {
		c.prettyLogger = prettyLogger
	}
}

// WithMetrics registers the queue's datapath counters with the given
// registerer. Counters are read as a snapshot on scrape.
func WithMetrics(registerer prometheus.Registerer) ConfigOption {
	return func(c *Config) {
		c.metrics = registerer
	}
}

func NewConfig(opts ...ConfigOption) Config {
	config := Config{
		loggerLevel: zerolog.ErrorLevel,
	}
	for _, opt := range opts {
		opt(&config)
	}

	return config
}
