package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{"Plain month add", date(2024, time.March, 15), 1, date(2024, time.April, 15)},
		{"January 31 clamps to leap February", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"January 31 clamps to non-leap February", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"November 30 plus 3 months clamps", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
		{"Year rollover", date(2024, time.December, 1), 2, date(2025, time.February, 1)},
		{"Twelve months", date(2024, time.February, 29), 12, date(2025, time.February, 28)},
		{"Zero months", date(2024, time.June, 10), 0, date(2024, time.June, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonthsClamped(tt.start, tt.months))
		})
	}
}

func TestContractExpiryDate(t *testing.T) {
	contract := &Contract{
		StartDate:      date(2024, time.January, 31),
		DurationMonths: 1,
	}
	assert.Equal(t, date(2024, time.February, 29), contract.ExpiryDate())
}

func TestContractIsExpired(t *testing.T) {
	today := DateOnly(time.Now())

	expired := &Contract{StartDate: today.AddDate(-2, 0, 0), DurationMonths: 12}
	assert.True(t, expired.IsExpired())

	current := &Contract{StartDate: today, DurationMonths: 12}
	assert.False(t, current.IsExpired())

	// 到期日当天尚未过期
	endsToday := &Contract{StartDate: AddMonthsClamped(today, -6), DurationMonths: 6}
	assert.False(t, endsToday.IsExpired())
}

func TestContractTotalValue(t *testing.T) {
	contract := &Contract{
		MonthlyValue:   decimal.RequireFromString("49.90"),
		DurationMonths: 12,
	}

	expected := decimal.RequireFromString("598.80")
	assert.True(t, expected.Equal(contract.TotalValue()), "total value = %s", contract.TotalValue())
}

func TestDateOnly(t *testing.T) {
	stamped := time.Date(2026, time.August, 29, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, date(2026, time.August, 29), DateOnly(stamped))

	t.Run("非UTC时间按UTC日历日归一", func(t *testing.T) {
		brt := time.FixedZone("BRT", -3*60*60)
		// 巴西 22:30 已是 UTC 次日凌晨
		late := time.Date(2026, time.August, 29, 22, 30, 0, 0, brt)
		assert.Equal(t, date(2026, time.August, 30), DateOnly(late))
	})

	t.Run("同一时刻在不同时区得到同一日期", func(t *testing.T) {
		now := time.Now()
		local := now.In(time.FixedZone("BRT", -3*60*60))
		assert.True(t, DateOnly(now).Equal(DateOnly(local)))
	})
}
