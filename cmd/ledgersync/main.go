// Command ledgersync is C5: it subscribes to the platform's block-delta
// stream under the supply_chain namespace, applies each block strictly in
// order through the projector, and serves /metrics for the counters and
// queue-depth gauge that track it.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"provenance-chain/core"
	"provenance-chain/internal/ledgersync"
	"provenance-chain/internal/platform"
	"provenance-chain/internal/store"
	"provenance-chain/pkg/config"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("ledgersync: load config")
	}
	lv, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	log := logrus.StandardLogger()
	log.SetLevel(lv)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	mongoURI := fmt.Sprintf("mongodb://%s:%d", cfg.Store.DBHost, cfg.Store.DBPort)
	st, err := store.DialMongo(ctx, mongoURI, cfg.Store.DBName)
	if err != nil {
		log.WithError(err).Fatal("ledgersync: dial store")
	}
	defer st.Close(context.Background())

	client, err := platform.Dial(cfg.Platform.ValidatorURL)
	if err != nil {
		log.WithError(err).Fatal("ledgersync: dial platform")
	}
	defer client.Close()

	metrics := ledgersync.NewMetrics()
	projector := ledgersync.NewProjector(st, log, metrics)
	queue := ledgersync.NewQueue(256, projector.Apply, log, metrics)
	subscriber := ledgersync.NewSubscriber(client, core.Namespace, cfg.Platform.RetryWait, log)

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Info("ledgersync: metrics listening on :9100")
		if err := http.ListenAndServe(":9100", mux); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("ledgersync: metrics server")
		}
	}()

	deltas := make(chan platform.BlockDelta)
	go queue.Run(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-deltas:
				if err := queue.Enqueue(ctx, d); err != nil {
					log.WithError(err).Warn("ledgersync: enqueue canceled")
					return
				}
			}
		}
	}()

	log.WithField("namespace", core.Namespace).Info("ledgersync: subscribing to platform")
	if err := subscriber.Run(ctx, deltas); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("ledgersync: subscriber stopped")
	}
	log.Info("ledgersync: shutting down")
}
