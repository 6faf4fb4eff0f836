package metrics

// Collector wraps metrics and provides helper methods with pre-filled labels.
type Collector struct {
	database string
}

// NewCollector creates a new Collector for the given database label.
func NewCollector(database string) *Collector {
	return &Collector{database: database}
}

// IncExecuted increments the executed counter for a direction.
func (c *Collector) IncExecuted(direction string) {
	MigrationsExecutedTotal.WithLabelValues(c.database, direction).Inc()
}

// IncErrors increments the error counter for a direction.
func (c *Collector) IncErrors(direction string) {
	MigrationErrorsTotal.WithLabelValues(c.database, direction).Inc()
}

// IncOperations increments the operations counter.
func (c *Collector) IncOperations(operation string) {
	OperationsTotal.WithLabelValues(c.database, operation).Inc()
}

// SetPending sets the pending migrations gauge.
func (c *Collector) SetPending(count int) {
	PendingMigrations.WithLabelValues(c.database).Set(float64(count))
}

// SetCatalogSize sets the catalog size gauge.
func (c *Collector) SetCatalogSize(count int) {
	CatalogSize.WithLabelValues(c.database).Set(float64(count))
}

// SetCurrentBatch sets the current batch gauge.
func (c *Collector) SetCurrentBatch(batch int) {
	CurrentBatch.WithLabelValues(c.database).Set(float64(batch))
}

// ObserveOperationDuration records an operation duration observation.
func (c *Collector) ObserveOperationDuration(operation string, seconds float64) {
	OperationDuration.WithLabelValues(c.database, operation).Observe(seconds)
}

// ObserveMigrationDuration records a single migration duration observation.
func (c *Collector) ObserveMigrationDuration(direction string, seconds float64) {
	MigrationDuration.WithLabelValues(c.database, direction).Observe(seconds)
}
