package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractPlan 合同套餐
type ContractPlan string

const (
	PlanBasic      ContractPlan = "BASIC"
	PlanPremium    ContractPlan = "PREMIUM"
	PlanEnterprise ContractPlan = "ENTERPRISE"
)

// contractPlanLabels 合同套餐显示名称映射表
var contractPlanLabels = map[ContractPlan]string{
	PlanBasic:      "Basic",
	PlanPremium:    "Premium",
	PlanEnterprise: "Enterprise",
}

// Valid 判断合同套餐是否为合法枚举值
func (p ContractPlan) Valid() bool {
	_, ok := contractPlanLabels[p]
	return ok
}

// Label 返回合同套餐的显示名称
func (p ContractPlan) Label() string {
	if label, ok := contractPlanLabels[p]; ok {
		return label
	}
	return string(p)
}

// ContractStatus 合同状态
type ContractStatus string

const (
	ContractActive    ContractStatus = "ACTIVE"
	ContractExpired   ContractStatus = "EXPIRED"
	ContractCancelled ContractStatus = "CANCELLED"
	ContractSuspended ContractStatus = "SUSPENDED"
)

// contractStatusLabels 合同状态显示名称映射表
var contractStatusLabels = map[ContractStatus]string{
	ContractActive:    "Active",
	ContractExpired:   "Expired",
	ContractCancelled: "Cancelled",
	ContractSuspended: "Suspended",
}

// Valid 判断合同状态是否为合法枚举值
func (s ContractStatus) Valid() bool {
	_, ok := contractStatusLabels[s]
	return ok
}

// Label 返回合同状态的显示名称
func (s ContractStatus) Label() string {
	if label, ok := contractStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Contract 表示客户的服务合同。
//
// 金额使用定点十进制表示（两位小数），禁止使用浮点数，
// 避免聚合时出现分位漂移。
type Contract struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ClientID       string          `json:"clientId" gorm:"type:varchar(36);index;not null"`
	Plan           ContractPlan    `json:"plan" gorm:"type:varchar(20);not null;index"`
	MonthlyValue   decimal.Decimal `json:"monthlyValue" gorm:"type:decimal(10,2);not null"`
	StartDate      time.Time       `json:"startDate" gorm:"type:date;not null;index"`
	DurationMonths int             `json:"durationMonths" gorm:"not null"`
	Status         ContractStatus  `json:"status" gorm:"type:varchar(15);not null;index;default:ACTIVE"`
	Notes          string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ExpiryDate 返回合同到期日期
//
// 按日历月加法计算：起始日加 durationMonths 个月，
// 目标月较短时将日号收缩到该月最后一天（2024-01-31 + 1 月 = 2024-02-29）。
func (c *Contract) ExpiryDate() time.Time {
	return AddMonthsClamped(c.StartDate, c.DurationMonths)
}

// IsExpired 判断合同是否已过期（仅比较日历日期，不比较时刻）
func (c *Contract) IsExpired() bool {
	today := DateOnly(time.Now())
	return today.After(DateOnly(c.ExpiryDate()))
}

// TotalValue 返回合同总价值（月费 × 月数，精确十进制乘法）
func (c *Contract) TotalValue() decimal.Decimal {
	return c.MonthlyValue.Mul(decimal.NewFromInt(int64(c.DurationMonths)))
}

// AddMonthsClamped 对日期做日历月加法，日号超出目标月长度时收缩到月末。
//
// 不能用 time.AddDate：它会把 1 月 31 日 + 1 个月归一化为 3 月 2/3 日。
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// lastDayOfMonth 返回给定年月的最后一天的日号
func lastDayOfMonth(year int, month time.Month) int {
	// 下个月第 0 天即本月最后一天
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly 去掉时间部分，只保留日历日期。
//
// 统一换算到 UTC 再取日期：日期比较必须在同一时区进行，
// 否则本地午夜与 UTC 午夜作为时刻永不相等。
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
