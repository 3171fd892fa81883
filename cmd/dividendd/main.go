package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devbyteai/Diamond-Dividend-Vault/cmd/dividendd/bootstrap"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/holdings"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/node"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/platform/state"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/vault"
	"github.com/devbyteai/Diamond-Dividend-Vault/internal/yield"
	"github.com/devbyteai/Diamond-Dividend-Vault/pkg/scheduler"
)

var (
	buildVersion = "unknown"
	buildDate    = "unknown"
	buildUser    = "unknown"
)

// Dividend Vault Daemon
func main() {
	// -------------------------------------------------------------------------
	// Logging

	ctx := bootstrap.NewContextWithLogger()

	node.Log(ctx, "Started : Application Initializing")
	defer node.Log(ctx, "Completed")

	node.Log(ctx, "Build %v (%v on %v)", buildVersion, buildUser, buildDate)

	// -------------------------------------------------------------------------
	// Config

	cfg, err := bootstrap.NewConfigFromEnv(ctx)
	if err != nil {
		node.LogError(ctx, "Parsing Config : %s", err)
		os.Exit(1)
	}

	// -------------------------------------------------------------------------
	// Storage

	node.Log(ctx, "Started : Initialize Database")

	masterDB, err := bootstrap.NewMasterDB(ctx, cfg)
	if err != nil {
		node.LogError(ctx, "Register DB : %s", err)
		os.Exit(1)
	}
	defer masterDB.Close()

	if err := masterDB.StatusCheck(ctx); err != nil {
		node.LogError(ctx, "DB status check : %s", err)
		os.Exit(1)
	}

	// -------------------------------------------------------------------------
	// Vault

	v, err := bootstrap.NewVault(ctx, cfg, masterDB)
	if err != nil {
		node.LogError(ctx, "Create vault : %s", err)
		os.Exit(1)
	}

	// -------------------------------------------------------------------------
	// Holdings Cache Writer

	// Modified holdings are queued on this channel and written through to
	// storage in the background instead of blocking each operation.
	cacheChannel := &holdings.CacheChannel{}
	cacheChannel.Open(100)
	v.SetCacheChannel(cacheChannel)

	cacheErrors := make(chan error, 1)
	go func() {
		node.Log(ctx, "Holdings cache writer running")
		cacheErrors <- holdings.ProcessCacheItems(ctx, masterDB, cacheChannel)
	}()

	// -------------------------------------------------------------------------
	// Periodic Jobs

	var sch scheduler.Scheduler

	flushJob := scheduler.NewPeriodicProcess("Flush", &flushProcess{vault: v},
		cfg.Vault.FlushInterval)
	if err := sch.ScheduleJob(ctx, flushJob); err != nil {
		node.LogError(ctx, "Schedule flush : %s", err)
		os.Exit(1)
	}

	sources, err := yield.ParseSources(cfg.Yield.Sources)
	if err != nil {
		node.LogError(ctx, "Parse yield sources : %s", err)
		os.Exit(1)
	}
	if len(sources) > 0 {
		var operator state.Account
		if len(cfg.Vault.OwnerAccount) > 0 {
			if operator, err = state.AccountFromString(cfg.Vault.OwnerAccount); err != nil {
				node.LogError(ctx, "Invalid owner account : %s", err)
				os.Exit(1)
			}
		}

		harvest := yield.NewHarvestProcess(v, operator, sources)
		harvestJob := scheduler.NewPeriodicProcess("Harvest", harvest,
			cfg.Yield.HarvestInterval)
		if err := sch.ScheduleJob(ctx, harvestJob); err != nil {
			node.LogError(ctx, "Schedule harvest : %s", err)
			os.Exit(1)
		}
		node.Log(ctx, "Harvesting %d yield sources every %s", len(sources),
			cfg.Yield.HarvestInterval)
	}

	// Make a channel to listen for errors coming from the scheduler. Use a
	// buffered channel so the goroutine can exit if we don't collect this
	// error.
	schedulerErrors := make(chan error, 1)

	go func() {
		node.Log(ctx, "Scheduler Running")
		schedulerErrors <- sch.Run(ctx)
	}()

	// -------------------------------------------------------------------------
	// Metrics

	metricsServer := &http.Server{
		Addr:    cfg.Metrics.ListenAddress,
		Handler: promhttp.Handler(),
	}
	go func() {
		node.Log(ctx, "Metrics listening on %s", cfg.Metrics.ListenAddress)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			node.LogWarn(ctx, "Metrics server : %s", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	// Make a channel to listen for an interrupt or terminate signal from the
	// OS. Use a buffered channel because the signal package requires it.
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-schedulerErrors:
		node.LogError(ctx, "Scheduler failed : %s", err)

	case <-osSignals:
		node.Log(ctx, "Start shutdown...")

		if err := sch.Stop(ctx); err != nil {
			node.LogError(ctx, "Could not stop scheduler : %s", err)
		}
	}

	metricsServer.Shutdown(ctx)

	// Stop queueing new writes, then wait for the cache writer to drain.
	cacheChannel.Close()
	if err := <-cacheErrors; err != nil {
		node.LogError(ctx, "Cache writer : %s", err)
	}

	// Final flush so nothing modified since the last periodic write is lost.
	if err := v.Flush(ctx); err != nil {
		node.LogError(ctx, "Final flush : %s", err)
		os.Exit(1)
	}
}

// flushProcess periodically writes the ledger and modified holdings through
// to storage.
type flushProcess struct {
	vault *vault.Vault
}

func (fp *flushProcess) Run(ctx context.Context) {
	if err := fp.vault.Flush(ctx); err != nil {
		node.LogError(ctx, "Flush failed : %s", err)
	}
}
