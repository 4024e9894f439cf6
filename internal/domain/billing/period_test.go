package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin-app/internal/domain/plans"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputePeriodMonthly(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"plain month", date(2024, time.March, 15), date(2024, time.April, 15)},
		{"jan 31 clamps to leap feb", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"jan 31 clamps to non-leap feb", date(2025, time.January, 31), date(2025, time.February, 28)},
		{"may 31 clamps to june 30", date(2024, time.May, 31), date(2024, time.June, 30)},
		{"december rolls into next year", date(2024, time.December, 10), date(2025, time.January, 10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			period, err := ComputePeriod(plans.CycleMonthly, tc.start)
			require.NoError(t, err)
			assert.Equal(t, tc.start, period.Start)
			assert.Equal(t, tc.want, period.NextBillingDate)
		})
	}
}

func TestComputePeriodYearly(t *testing.T) {
	period, err := ComputePeriod(plans.CycleYearly, date(2024, time.February, 29))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.February, 28), period.NextBillingDate)

	period, err = ComputePeriod(plans.CycleYearly, date(2024, time.June, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 1), period.NextBillingDate)
}

func TestComputePeriodPreservesClock(t *testing.T) {
	start := time.Date(2024, time.January, 31, 9, 30, 45, 0, time.UTC)
	period, err := ComputePeriod(plans.CycleMonthly, start)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 45, 0, time.UTC), period.NextBillingDate)
}

func TestComputePeriodUnsupportedCycle(t *testing.T) {
	_, err := ComputePeriod(plans.BillingCycle("WEEKLY"), date(2024, time.January, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBillingCycle)

	_, err = ComputePeriod(plans.BillingCycle(""), date(2024, time.January, 1))
	assert.ErrorIs(t, err, ErrUnsupportedBillingCycle)
}
