package vault

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	distributionsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_distributions_total",
		Help: "Number of dividend distributions processed",
	})
	distributedUnits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_distributed_units_total",
		Help: "Lifetime sum of distributed dividend units",
	})
	withdrawalsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_withdrawals_total",
		Help: "Number of successful dividend withdrawals",
	})
	withdrawnUnits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_withdrawn_units_total",
		Help: "Lifetime sum of withdrawn dividend units",
	})
	transfersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_transfers_total",
		Help: "Number of balance changing events processed",
	})
	totalWeightedSharesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vault_total_weighted_shares",
		Help: "Current ledger wide total of weighted shares",
	})
)
