package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
)

func TestContractServiceCreate(t *testing.T) {
	t.Run("创建合同初始状态为生效中", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		contract, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			DurationMonths: 12,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ContractActive, contract.Status)
		assert.Equal(t, 12, contract.DurationMonths)

		// 总价值为精确十进制乘法：49.90 × 12 = 598.80
		assert.True(t, contract.TotalValue().Equal(decimal.RequireFromString("598.80")),
			"total value = %s", contract.TotalValue())
	})

	t.Run("客户不存在", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)

		_, err := svc.Create(CreateContractInput{
			ClientID:       "missing",
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Now(),
			DurationMonths: 12,
		})
		assert.ErrorIs(t, err, storage.ErrClientNotFound)
	})

	t.Run("套餐未知", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		_, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           "GOLD",
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Now(),
			DurationMonths: 12,
		})
		assert.Error(t, err)
	})

	t.Run("月数必须为正", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		_, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Now(),
			DurationMonths: 0,
		})
		assert.Error(t, err)
	})

	t.Run("月费不能为负", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		_, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("-1.00"),
			StartDate:      time.Now(),
			DurationMonths: 12,
		})
		assert.Error(t, err)
	})
}

func TestContractExpiry(t *testing.T) {
	t.Run("到期日按日历月收缩到月末", func(t *testing.T) {
		contract := &domain.Contract{
			StartDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			DurationMonths: 1,
		}
		// 2024 年是闰年
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), contract.ExpiryDate())
	})

	t.Run("跨年加月", func(t *testing.T) {
		contract := &domain.Contract{
			StartDate:      time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC),
			DurationMonths: 3,
		}
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), contract.ExpiryDate())
	})

	t.Run("Expired只返回生效中且已到期的合同", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		// 已到期但状态仍为生效中
		expired, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Now().AddDate(-2, 0, 0),
			DurationMonths: 12,
		})
		require.NoError(t, err)

		// 仍在有效期内
		_, err = svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanPremium,
			MonthlyValue:   decimal.RequireFromString("129.90"),
			StartDate:      time.Now(),
			DurationMonths: 12,
		})
		require.NoError(t, err)

		// 已到期但已标记取消，不应出现在列表中
		cancelledContract, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanEnterprise,
			MonthlyValue:   decimal.RequireFromString("299.90"),
			StartDate:      time.Now().AddDate(-3, 0, 0),
			DurationMonths: 6,
		})
		require.NoError(t, err)
		cancelled := domain.ContractCancelled
		_, err = svc.Update(cancelledContract.ID, UpdateContractInput{Status: &cancelled})
		require.NoError(t, err)

		list, err := svc.Expired()
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, expired.ID, list[0].ID)
	})
}

func TestContractServiceUpdate(t *testing.T) {
	t.Run("调整月费保留两位小数", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		contract, err := svc.Create(CreateContractInput{
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			MonthlyValue:   decimal.RequireFromString("49.90"),
			StartDate:      time.Now(),
			DurationMonths: 12,
		})
		require.NoError(t, err)

		value := decimal.RequireFromString("59.999")
		updated, err := svc.Update(contract.ID, UpdateContractInput{MonthlyValue: &value})
		require.NoError(t, err)
		assert.True(t, updated.MonthlyValue.Equal(decimal.RequireFromString("60.00")))
	})

	t.Run("按套餐过滤", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewContractService(store, nil)
		client := seedClient(t, store, "alice", "52998224725")

		for _, plan := range []domain.ContractPlan{domain.PlanBasic, domain.PlanPremium} {
			_, err := svc.Create(CreateContractInput{
				ClientID:       client.ID,
				Plan:           plan,
				MonthlyValue:   decimal.RequireFromString("49.90"),
				StartDate:      time.Now(),
				DurationMonths: 12,
			})
			require.NoError(t, err)
		}

		premium, err := svc.List(domain.ContractFilter{Plan: domain.PlanPremium})
		require.NoError(t, err)
		require.Len(t, premium, 1)
		assert.Equal(t, domain.PlanPremium, premium[0].Plan)
	})
}
