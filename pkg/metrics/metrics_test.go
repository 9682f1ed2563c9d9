package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndGauges(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	defer Close()

	before := GetCounter(SaleFinalized)
	Incr(SaleFinalized, 1)
	Incr(SaleFinalized, 2)
	assert.Equal(t, before+3, GetCounter(SaleFinalized))

	SetGauge(LowStockProduct, 4)
	assert.Equal(t, int64(4), GetGauge(LowStockProduct))

	points, err := Query(LowStockProduct, time.Now().Add(-time.Minute), time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, points)
	assert.Equal(t, float64(4), points[len(points)-1].Value)
}

func TestQueryWithoutStorage(t *testing.T) {
	require.NoError(t, Close())
	points, err := Query(SaleRevenue, time.Now().Add(-time.Hour), time.Now())
	assert.NoError(t, err)
	assert.Empty(t, points)
}
