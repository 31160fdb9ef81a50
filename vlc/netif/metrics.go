// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package netif

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the Prometheus instrumentation for one Device. A Device
// registers its own metrics so two Devices in the same process don't
// collide on collector registration.
type metrics struct {
	framesSent     prometheus.Counter
	bytesSent      prometheus.Counter
	sendErrors     *prometheus.CounterVec
	framesReceived prometheus.Counter
	bytesReceived  prometheus.Counter
	framesDropped  *prometheus.CounterVec
	dataRateBPS    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) *metrics {
	m := &metrics{
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "frames_sent_total",
			Help:        "Number of link-layer frames successfully transmitted.",
			ConstLabels: constLabels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "bytes_sent_total",
			Help:        "Number of framed bytes (header+payload+crc) transmitted.",
			ConstLabels: constLabels,
		}),
		sendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "send_errors_total",
			Help:        "Number of Send calls that failed, labelled by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "frames_received_total",
			Help:        "Number of link-layer frames successfully decoded and CRC-validated.",
			ConstLabels: constLabels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "bytes_received_total",
			Help:        "Number of framed bytes successfully decoded.",
			ConstLabels: constLabels,
		}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "frames_dropped_total",
			Help:        "Number of receives dropped before reaching the upper stack, labelled by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		dataRateBPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "vlc",
			Subsystem:   "netif",
			Name:        "recovered_data_rate_bps",
			Help:        "Bit rate recovered from the most recent preamble lock.",
			ConstLabels: constLabels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.framesSent, m.bytesSent, m.sendErrors, m.framesReceived, m.bytesReceived, m.framesDropped, m.dataRateBPS)
	}
	return m
}
