package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/monitoring"
	"mailhub/backend/internal/storage"
)

// ContractService 封装合同管理与估值业务操作。
type ContractService struct {
	store   storage.Store
	metrics *monitoring.Metrics
}

// NewContractService 创建合同业务服务，metrics 可以为 nil。
func NewContractService(store storage.Store, metrics *monitoring.Metrics) *ContractService {
	return &ContractService{
		store:   store,
		metrics: metrics,
	}
}

// CreateContractInput 定义创建合同所需的输入。
type CreateContractInput struct {
	ClientID       string
	Plan           domain.ContractPlan
	MonthlyValue   decimal.Decimal
	StartDate      time.Time
	DurationMonths int
	Notes          string
}

// Create 为客户创建服务合同，初始状态为生效中。
func (s *ContractService) Create(input CreateContractInput) (*domain.Contract, error) {
	if !input.Plan.Valid() {
		return nil, domain.NewValidationError("plan", "unknown contract plan")
	}
	if input.DurationMonths <= 0 {
		return nil, domain.NewValidationError("durationMonths", "duration must be positive")
	}
	if input.MonthlyValue.IsNegative() {
		return nil, domain.NewValidationError("monthlyValue", "monthly value must not be negative")
	}
	if input.StartDate.IsZero() {
		return nil, domain.NewValidationError("startDate", "start date is required")
	}

	if _, err := s.store.GetClient(input.ClientID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	contract := &domain.Contract{
		ID:             uuid.NewString(),
		ClientID:       input.ClientID,
		Plan:           input.Plan,
		MonthlyValue:   input.MonthlyValue.Round(2),
		StartDate:      domain.DateOnly(input.StartDate),
		DurationMonths: input.DurationMonths,
		Status:         domain.ContractActive,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateContract(contract); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ContractsCreated.WithLabelValues(string(contract.Plan)).Inc()
	}

	return contract, nil
}

// Get 根据 ID 获取合同。
func (s *ContractService) Get(id string) (*domain.Contract, error) {
	return s.store.GetContract(id)
}

// List 返回按起始日期倒序排列的合同列表。
func (s *ContractService) List(filter domain.ContractFilter) ([]domain.Contract, error) {
	return s.store.ListContracts(filter)
}

// UpdateContractInput 定义合同可修改的字段，nil 表示保持不变。
type UpdateContractInput struct {
	Plan           *domain.ContractPlan
	MonthlyValue   *decimal.Decimal
	StartDate      *time.Time
	DurationMonths *int
	Status         *domain.ContractStatus
	Notes          *string
}

// Update 更新合同信息。
func (s *ContractService) Update(id string, input UpdateContractInput) (*domain.Contract, error) {
	contract, err := s.store.GetContract(id)
	if err != nil {
		return nil, err
	}

	if input.Plan != nil {
		if !input.Plan.Valid() {
			return nil, domain.NewValidationError("plan", "unknown contract plan")
		}
		contract.Plan = *input.Plan
	}
	if input.MonthlyValue != nil {
		if input.MonthlyValue.IsNegative() {
			return nil, domain.NewValidationError("monthlyValue", "monthly value must not be negative")
		}
		contract.MonthlyValue = input.MonthlyValue.Round(2)
	}
	if input.StartDate != nil {
		contract.StartDate = domain.DateOnly(*input.StartDate)
	}
	if input.DurationMonths != nil {
		if *input.DurationMonths <= 0 {
			return nil, domain.NewValidationError("durationMonths", "duration must be positive")
		}
		contract.DurationMonths = *input.DurationMonths
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.NewValidationError("status", "unknown contract status")
		}
		contract.Status = *input.Status
	}
	if input.Notes != nil {
		contract.Notes = *input.Notes
	}

	if err := s.store.UpdateContract(contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Delete 删除合同。
func (s *ContractService) Delete(id string) error {
	return s.store.DeleteContract(id)
}

// Expired 返回状态仍为生效中但日历上已经到期的合同。
//
// 用于提醒运营人员跟进续签或关闭。
func (s *ContractService) Expired() ([]domain.Contract, error) {
	active, err := s.store.ListContracts(domain.ContractFilter{
		Status: domain.ContractActive,
	})
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Contract, 0)
	for _, contract := range active {
		if contract.IsExpired() {
			expired = append(expired, contract)
		}
	}
	return expired, nil
}
