package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMigrationsExecutedTotal_Increment(t *testing.T) {
	before := testutil.ToFloat64(MigrationsExecutedTotal.WithLabelValues("test-db", "up"))
	MigrationsExecutedTotal.WithLabelValues("test-db", "up").Inc()
	after := testutil.ToFloat64(MigrationsExecutedTotal.WithLabelValues("test-db", "up"))

	assert.Equal(t, before+1, after)
}

func TestMigrationErrorsTotal_Increment(t *testing.T) {
	before := testutil.ToFloat64(MigrationErrorsTotal.WithLabelValues("test-db-2", "down"))
	MigrationErrorsTotal.WithLabelValues("test-db-2", "down").Inc()
	after := testutil.ToFloat64(MigrationErrorsTotal.WithLabelValues("test-db-2", "down"))

	assert.Equal(t, before+1, after)
}

func TestPendingMigrations_SetValue(t *testing.T) {
	PendingMigrations.WithLabelValues("test-db-3").Set(5)
	value := testutil.ToFloat64(PendingMigrations.WithLabelValues("test-db-3"))

	assert.Equal(t, float64(5), value)
}

func TestCurrentBatch_SetValue(t *testing.T) {
	CurrentBatch.WithLabelValues("test-db-4").Set(3)
	value := testutil.ToFloat64(CurrentBatch.WithLabelValues("test-db-4"))

	assert.Equal(t, float64(3), value)
}

func TestOperationDuration_Observe(t *testing.T) {
	OperationDuration.WithLabelValues("test-db-5", "up").Observe(1.5)
	count := testutil.CollectAndCount(OperationDuration)

	assert.Greater(t, count, 0)
}

func TestMigrationDuration_Observe(t *testing.T) {
	MigrationDuration.WithLabelValues("test-db-6", "up").Observe(0.5)
	count := testutil.CollectAndCount(MigrationDuration)

	assert.Greater(t, count, 0)
}
