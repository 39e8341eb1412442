// Command tp is the transaction-processor daemon (C3): it registers the
// supply_chain/1.1 family with the platform over the VALIDATOR_URL
// connection and applies every transaction the platform routes to it via
// core.Dispatch, reporting each outcome back over the same stream.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"provenance-chain/core"
	"provenance-chain/internal/perr"
	"provenance-chain/internal/platform"
	"provenance-chain/pkg/config"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.WithError(err).Fatal("tp: load config")
	}
	lv, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	logrus.SetLevel(lv)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	host, err := platform.HostTP(ctx, cfg.Platform.ValidatorURL, core.FamilyName, core.FamilyVersion, []string{core.Namespace})
	if err != nil {
		logrus.WithError(err).Fatal("tp: register with platform")
	}
	defer host.Close()

	logrus.WithFields(logrus.Fields{
		"validator_url": cfg.Platform.ValidatorURL,
		"family":        core.FamilyName,
		"version":       core.FamilyVersion,
	}).Info("tp: registered, awaiting transactions")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("tp: shutting down")
			return
		case req, ok := <-host.Requests():
			if !ok {
				logrus.WithError(host.Err()).Error("tp: request stream closed")
				return
			}
			apply(ctx, host, req)
		}
	}
}

// apply runs one transaction through core.Dispatch against the platform's
// state, via the hosted stream's GetState/SetState round trips, then
// reports the outcome.
func apply(ctx context.Context, host *platform.TPHost, req platform.TPRequest) {
	state := &remoteState{ctx: ctx, host: host}
	resp := platform.TPResponse{CorrelationID: req.CorrelationID}

	if err := core.Dispatch(req.Payload, req.Signer, state); err != nil {
		resp.Error = err.Error()
		var ve *perr.ValidationError
		if errors.As(err, &ve) {
			logrus.WithError(err).Debug("tp: rejected transaction")
		} else {
			logrus.WithError(err).Warn("tp: transaction failed")
		}
	} else {
		resp.OK = true
	}

	if err := host.Respond(resp); err != nil {
		logrus.WithError(err).Error("tp: respond to platform")
	}
}

// remoteState adapts one TPHost's GetState/SetState round trips to
// core.StateRW for the lifetime of a single Dispatch call.
type remoteState struct {
	ctx  context.Context
	host *platform.TPHost
}

func (s *remoteState) GetState(address string) ([]byte, error) {
	return s.host.GetState(s.ctx, address)
}

func (s *remoteState) SetState(address string, value []byte) error {
	return s.host.SetState(s.ctx, address, value)
}
