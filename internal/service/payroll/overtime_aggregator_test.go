package payroll

import (
	"fmt"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interval(id string, start, end int, status payroll.OvertimeStatus) payroll.OvertimeInterval {
	return payroll.OvertimeInterval{ID: id, Start: *julyAt(2, start, 0), End: *julyAt(2, end, 0), Status: status}
}

func TestAggregateOvertime(t *testing.T) {
	t.Run("only approved intervals count", func(t *testing.T) {
		got := AggregateOvertime([]payroll.OvertimeInterval{
			interval("a", 17, 21, payroll.OvertimeStatusApproved),
			interval("b", 17, 19, payroll.OvertimeStatusPending),
			interval("c", 17, 19, payroll.OvertimeStatusRejected),
		}, firstHalfJuly)

		assert.True(t, got.Hours.Equal(d("4")), got.Hours.String())
		assert.Equal(t, 1, got.Intervals)
		assert.Empty(t, got.Anomalies)
	})

	t.Run("each interval is rounded before summing", func(t *testing.T) {
		var intervals []payroll.OvertimeInterval
		for _, day := range []int{2, 3, 4} {
			intervals = append(intervals, payroll.OvertimeInterval{
				ID:     fmt.Sprintf("ot-%d", day),
				Start:  *julyAt(day, 17, 0),
				End:    *julyAt(day, 17, 20),
				Status: payroll.OvertimeStatusApproved,
			})
		}

		got := AggregateOvertime(intervals, firstHalfJuly)

		// 3 × round(20/60) = 0.99, not round(60/60) = 1.00
		assert.True(t, got.Hours.Equal(d("0.99")), got.Hours.String())
	})

	t.Run("intervals starting outside the period are ignored", func(t *testing.T) {
		got := AggregateOvertime([]payroll.OvertimeInterval{
			{ID: "late", Start: *julyAt(16, 17, 0), End: *julyAt(16, 19, 0), Status: payroll.OvertimeStatusApproved},
		}, firstHalfJuly)

		assert.True(t, got.Hours.IsZero())
		assert.Equal(t, 0, got.Intervals)
	})

	t.Run("end before start is reported, not negative", func(t *testing.T) {
		got := AggregateOvertime([]payroll.OvertimeInterval{
			interval("broken", 21, 17, payroll.OvertimeStatusApproved),
		}, firstHalfJuly)

		assert.True(t, got.Hours.IsZero())
		require.Len(t, got.Anomalies, 1)
		assert.Equal(t, payroll.AnomalyMalformedOvertime, got.Anomalies[0].Type)
	})
}

func TestOvertimePay(t *testing.T) {
	tests := []struct {
		hours, rate, multiplier, want string
	}{
		{"4", "200.00", "1.25", "1000.00"},
		{"0", "200.00", "1.25", "0"},
		{"1.33", "187.50", "1.5", "374.06"},   // 374.0625
		{"0.99", "100.00", "1.25", "123.75"},
		{"2.5", "99.99", "1.3", "324.97"},     // 324.9675
	}
	for _, tt := range tests {
		got := OvertimePay(d(tt.hours), d(tt.rate), d(tt.multiplier))
		assert.True(t, got.Equal(d(tt.want)), "OvertimePay(%s, %s, %s) = %s, want %s", tt.hours, tt.rate, tt.multiplier, got, tt.want)
	}
}
