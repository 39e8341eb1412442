// Command server is the read/write HTTP façade (C4 submission + the read
// store's query surface): it accepts batches for signing and submission,
// serves the read-store's REST endpoints, and tails newly-applied blocks
// over /ws/blocks. It runs its own copy of the ledger-sync pipeline
// against the same store so that a single-node deployment needs no
// separate cmd/ledgersync process; BlockUpsert's idempotent replay check
// (spec.md §4.6) makes running both side by side safe in multi-node
// deployments too.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"provenance-chain/core"
	"provenance-chain/internal/batcher"
	"provenance-chain/internal/ledgersync"
	"provenance-chain/internal/platform"
	"provenance-chain/internal/store"
	"provenance-chain/pkg/config"
	"provenance-chain/server/controllers"
	"provenance-chain/server/routes"
	"provenance-chain/server/services"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("server: load config")
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
		log.WithError(err).Fatal("server: dial store")
	}
	defer st.Close(context.Background())

	client, err := platform.Dial(cfg.Platform.ValidatorURL)
	if err != nil {
		log.WithError(err).Fatal("server: dial platform")
	}
	defer client.Close()

	bch, err := batcher.New(cfg.Batcher.PrivateKeyHex, client, cfg.Batcher.SettleInterval, log)
	if err != nil {
		log.WithError(err).Fatal("server: init batcher")
	}

	hub := controllers.NewBlockHub()
	metrics := ledgersync.NewMetrics()
	projector := ledgersync.NewProjector(st, log, metrics)
	queue := ledgersync.NewQueue(256, projector.Apply, log, metrics)
	queue.OnApplied = hub.Broadcast
	subscriber := ledgersync.NewSubscriber(client, core.Namespace, cfg.Platform.RetryWait, log)

	go queue.Run(ctx)
	deltas := make(chan platform.BlockDelta)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-deltas:
				if err := queue.Enqueue(ctx, d); err != nil {
					return
				}
			}
		}
	}()
	go func() {
		if err := subscriber.Run(ctx, deltas); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("server: subscriber stopped")
		}
	}()

	readSvc := services.NewReadService(st)
	batchSvc := services.NewBatchService(bch)

	ctrl := routes.Controllers{
		Batch:   controllers.NewBatchController(batchSvc),
		Read:    controllers.NewReadController(readSvc),
		WS:      controllers.NewWSController(hub),
		Metrics: metrics.Handler(),
	}

	r := mux.NewRouter()
	routes.Register(r, ctrl)

	addr := ":8080"
	httpServer := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.WithField("addr", addr).Info("server: listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server: listen")
	}
	log.Info("server: shutting down")
}
