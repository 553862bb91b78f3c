package httptransport

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
)

// ContractHandler 处理合同管理相关的 HTTP 请求
type ContractHandler struct {
	contracts *service.ContractService
	log       *zap.Logger
}

// NewContractHandler 创建合同处理器
func NewContractHandler(contracts *service.ContractService, log *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		log:       log,
	}
}

type createContractRequest struct {
	ClientID       string `json:"clientId" binding:"required"`
	Plan           string `json:"plan" binding:"required"`
	MonthlyValue   string `json:"monthlyValue" binding:"required"` // 十进制字符串，如 "49.90"
	StartDate      string `json:"startDate" binding:"required"`    // YYYY-MM-DD
	DurationMonths int    `json:"durationMonths" binding:"required"`
	Notes          string `json:"notes"`
}

type updateContractRequest struct {
	Plan           *string `json:"plan"`
	MonthlyValue   *string `json:"monthlyValue"`
	StartDate      *string `json:"startDate"`
	DurationMonths *int    `json:"durationMonths"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

type contractResponse struct {
	*domain.Contract
	PlanLabel   string `json:"planLabel"`
	StatusLabel string `json:"statusLabel"`
	ExpiryDate  string `json:"expiryDate"` // YYYY-MM-DD
	TotalValue  string `json:"totalValue"` // 十进制字符串
	Expired     bool   `json:"expired"`
}

func newContractResponse(contract *domain.Contract) contractResponse {
	return contractResponse{
		Contract:    contract,
		PlanLabel:   contract.Plan.Label(),
		StatusLabel: contract.Status.Label(),
		ExpiryDate:  contract.ExpiryDate().Format("2006-01-02"),
		TotalValue:  contract.TotalValue().StringFixed(2),
		Expired:     contract.IsExpired(),
	}
}

func newContractList(contracts []domain.Contract) []contractResponse {
	out := make([]contractResponse, 0, len(contracts))
	for i := range contracts {
		out = append(out, newContractResponse(&contracts[i]))
	}
	return out
}

// Create 创建服务合同
func (h *ContractHandler) Create(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	monthlyValue, err := decimal.NewFromString(req.MonthlyValue)
	if err != nil {
		BadRequest(c, MsgInvalidValue)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		BadRequest(c, MsgInvalidDate)
		return
	}

	contract, err := h.contracts.Create(service.CreateContractInput{
		ClientID:       req.ClientID,
		Plan:           domain.ContractPlan(req.Plan),
		MonthlyValue:   monthlyValue,
		StartDate:      startDate,
		DurationMonths: req.DurationMonths,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("contract created",
		zap.String("contract_id", contract.ID),
		zap.String("client_id", contract.ClientID),
		zap.String("plan", string(contract.Plan)),
	)

	Created(c, newContractResponse(contract))
}

// List 获取合同列表
//
// 查询参数: clientId, status, plan
func (h *ContractHandler) List(c *gin.Context) {
	contracts, err := h.contracts.List(domain.ContractFilter{
		ClientID: c.Query("clientId"),
		Status:   domain.ContractStatus(c.Query("status")),
		Plan:     domain.ContractPlan(c.Query("plan")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newContractList(contracts))
}

// Get 获取合同详情
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.contracts.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newContractResponse(contract))
}

// Update 更新合同信息
func (h *ContractHandler) Update(c *gin.Context) {
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	input := service.UpdateContractInput{
		DurationMonths: req.DurationMonths,
		Notes:          req.Notes,
	}
	if req.Plan != nil {
		plan := domain.ContractPlan(*req.Plan)
		input.Plan = &plan
	}
	if req.Status != nil {
		status := domain.ContractStatus(*req.Status)
		input.Status = &status
	}
	if req.MonthlyValue != nil {
		monthlyValue, err := decimal.NewFromString(*req.MonthlyValue)
		if err != nil {
			BadRequest(c, MsgInvalidValue)
			return
		}
		input.MonthlyValue = &monthlyValue
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			BadRequest(c, MsgInvalidDate)
			return
		}
		input.StartDate = &startDate
	}

	contract, err := h.contracts.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newContractResponse(contract))
}

// Delete 删除合同
func (h *ContractHandler) Delete(c *gin.Context) {
	if err := h.contracts.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	NoContent(c)
}

// Expired 获取状态仍为生效中但已到期的合同
func (h *ContractHandler) Expired(c *gin.Context) {
	contracts, err := h.contracts.Expired()
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newContractList(contracts))
}
