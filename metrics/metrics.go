package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MigrationsExecutedTotal tracks migrations executed, by direction.
var MigrationsExecutedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modular_migrations_executed_total",
		Help: "Total migrations executed",
	},
	[]string{"database", "direction"},
)

// MigrationErrorsTotal tracks failed migration executions, by direction.
var MigrationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modular_migration_errors_total",
		Help: "Total failed migration executions",
	},
	[]string{"database", "direction"},
)

// OperationsTotal tracks migrator operations (up, rollback, reset, status).
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "modular_operations_total",
		Help: "Total migrator operations run",
	},
	[]string{"database", "operation"},
)

// PendingMigrations tracks the number of pending migrations seen by the last Up.
var PendingMigrations = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "modular_pending_migrations",
		Help: "Pending migrations at the start of the last run",
	},
	[]string{"database"},
)

// CatalogSize tracks the number of migration files found by the last scan.
var CatalogSize = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "modular_catalog_size",
		Help: "Migration files found by the last catalog scan",
	},
	[]string{"database"},
)

// CurrentBatch tracks the highest batch number written by the last Up.
var CurrentBatch = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "modular_current_batch",
		Help: "Highest batch number written by the last run",
	},
	[]string{"database"},
)

// OperationDuration tracks how long migrator operations take.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "modular_operation_duration_seconds",
		Help:    "Migrator operation latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"database", "operation"},
)

// MigrationDuration tracks single migration execution latency.
var MigrationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "modular_migration_duration_seconds",
		Help:    "Single migration execution latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"database", "direction"},
)
