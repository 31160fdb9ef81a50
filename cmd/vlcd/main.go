// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command vlcd runs the VLC link-layer driver as a standalone daemon: it
// brings up the LED transmitter and photodiode receiver on the configured
// GPIO pins, logs decoded frames, and serves Prometheus metrics over HTTP.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/timrdmr/ba-ip-over-vlc/internal/clock"
	"github.com/timrdmr/ba-ip-over-vlc/platform"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/link"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/manchester"
	"github.com/timrdmr/ba-ip-over-vlc/vlc/netif"
)

func main() {
	ledPin := flag.String("led-pin", "GPIO18", "GPIO pin name driving the LED transmitter")
	photodiodePin := flag.String("photodiode-pin", "GPIO23", "GPIO pin name reading the photodiode receiver")
	bitrate := flag.Int("bitrate", netif.DefaultConfig().BitrateBPS, "Manchester bitrate in bits per second")
	syncSymbols := flag.Int("sync-symbols", netif.DefaultConfig().NumSyncSymbols, "number of preamble symbols sent before each frame")
	tolerancePercent := flag.Int("tolerance-percent", manchester.DefaultConfig().TolerancePercent, "receiver edge-timing tolerance, percent of the recovered symbol period")
	metricsAddr := flag.String("metrics-addr", ":9110", "address to serve /metrics on")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if _, err := platform.Init(); err != nil {
		log.WithError(err).Fatal("vlcd: platform init failed")
	}

	led := gpioreg.ByName(*ledPin)
	if led == nil {
		log.Fatalf("vlcd: no such GPIO pin %q for LED transmitter", *ledPin)
	}
	photodiode := gpioreg.ByName(*photodiodePin)
	if photodiode == nil {
		log.Fatalf("vlcd: no such GPIO pin %q for photodiode receiver", *photodiodePin)
	}
	if err := photodiode.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		log.WithError(err).Fatal("vlcd: configuring photodiode pin as input failed")
	}

	dev, err := netif.New(
		led,
		photodiode,
		&clock.SystemTimer{},
		clock.NewSystem(),
		link.Addr{},
		netif.Config{
			BitrateBPS:     *bitrate,
			NumSyncSymbols: *syncSymbols,
			Receiver:       manchester.Config{TolerancePercent: *tolerancePercent, NumSyncSymbols: *syncSymbols},
		},
		func(f link.Frame) {
			log.WithFields(logrus.Fields{
				"src":   f.Src.String(),
				"dst":   f.Dst.String(),
				"bytes": len(f.Payload),
			}).Debugf("vlcd: received frame %s", hex.EncodeToString(f.Payload))
		},
		log,
		prometheus.DefaultRegisterer,
	)
	if err != nil {
		log.WithError(err).Fatal("vlcd: device init failed")
	}

	log.Infof("vlcd: link-layer address %s", dev.Address())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev.Start(ctx)
	defer dev.Halt()

	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: *metricsAddr}
	go func() {
		log.Infof("vlcd: serving metrics on %s", *metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("vlcd: metrics server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("vlcd: shutting down")
	_ = server.Close()
}
