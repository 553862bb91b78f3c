package httptransport

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
)

// CorrespondenceHandler 处理信件登记与状态流转的 HTTP 请求
type CorrespondenceHandler struct {
	correspondence *service.CorrespondenceService
	log            *zap.Logger
}

// NewCorrespondenceHandler 创建信件处理器
func NewCorrespondenceHandler(correspondence *service.CorrespondenceService, log *zap.Logger) *CorrespondenceHandler {
	return &CorrespondenceHandler{
		correspondence: correspondence,
		log:            log,
	}
}

type registerCorrespondenceRequest struct {
	MailboxID    string `json:"mailboxId" binding:"required"`
	Description  string `json:"description" binding:"required"`
	Kind         string `json:"kind" binding:"required"`
	Sender       string `json:"sender"`
	TrackingCode string `json:"trackingCode"`
	Notes        string `json:"notes"`
	ReceivedAt   string `json:"receivedAt"` // RFC3339，可选
}

type pickupRequest struct {
	PickedUpBy       string `json:"pickedUpBy"`
	PickupDocumentID string `json:"pickupDocumentId"`
	Notes            string `json:"notes"`
}

type returnRequest struct {
	Notes string `json:"notes"`
}

type correspondenceResponse struct {
	*domain.CorrespondenceItem
	KindLabel   string `json:"kindLabel"`
	StatusLabel string `json:"statusLabel"`
	DaysInBox   int    `json:"daysInBox"`
}

func newCorrespondenceResponse(item *domain.CorrespondenceItem) correspondenceResponse {
	return correspondenceResponse{
		CorrespondenceItem: item,
		KindLabel:          item.Kind.Label(),
		StatusLabel:        item.Status.Label(),
		DaysInBox:          item.DaysInBox(),
	}
}

func newCorrespondenceList(items []domain.CorrespondenceItem) []correspondenceResponse {
	out := make([]correspondenceResponse, 0, len(items))
	for i := range items {
		out = append(out, newCorrespondenceResponse(&items[i]))
	}
	return out
}

// Register 登记到达的信件
func (h *CorrespondenceHandler) Register(c *gin.Context) {
	var req registerCorrespondenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	input := service.RegisterInput{
		MailboxID:    req.MailboxID,
		Description:  req.Description,
		Kind:         domain.CorrespondenceKind(req.Kind),
		Sender:       req.Sender,
		TrackingCode: req.TrackingCode,
		Notes:        req.Notes,
	}

	if req.ReceivedAt != "" {
		receivedAt, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			BadRequest(c, "收件时间格式无效，应为 RFC3339")
			return
		}
		input.ReceivedAt = &receivedAt
	}

	item, err := h.correspondence.Register(input)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("correspondence registered",
		zap.String("item_id", item.ID),
		zap.String("mailbox_id", item.MailboxID),
		zap.String("kind", string(item.Kind)),
	)

	Created(c, newCorrespondenceResponse(item))
}

// List 获取信件列表
//
// 查询参数: clientId, mailboxId, status, kind, from=YYYY-MM-DD, to=YYYY-MM-DD
func (h *CorrespondenceHandler) List(c *gin.Context) {
	filter, ok := parseCorrespondenceFilter(c)
	if !ok {
		return
	}

	items, err := h.correspondence.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceList(items))
}

// parseCorrespondenceFilter 解析信件列表查询参数，解析失败时已写入响应
func parseCorrespondenceFilter(c *gin.Context) (domain.CorrespondenceFilter, bool) {
	filter := domain.CorrespondenceFilter{
		ClientID:  c.Query("clientId"),
		MailboxID: c.Query("mailboxId"),
		Status:    domain.CorrespondenceStatus(c.Query("status")),
		Kind:      domain.CorrespondenceKind(c.Query("kind")),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			BadRequest(c, MsgInvalidDate)
			return filter, false
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			BadRequest(c, MsgInvalidDate)
			return filter, false
		}
		filter.To = to
	}

	return filter, true
}

// Get 获取信件详情
func (h *CorrespondenceHandler) Get(c *gin.Context) {
	item, err := h.correspondence.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceResponse(item))
}

// Pickup 登记取件
func (h *CorrespondenceHandler) Pickup(c *gin.Context) {
	var req pickupRequest
	// 取件信息全部可选
	_ = c.ShouldBindJSON(&req)

	item, err := h.correspondence.MarkPickedUp(c.Param("id"), service.PickupInput{
		PickedUpBy:       req.PickedUpBy,
		PickupDocumentID: req.PickupDocumentID,
		Notes:            req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("correspondence picked up",
		zap.String("item_id", item.ID),
		zap.String("picked_up_by", item.PickedUpBy),
	)

	Success(c, newCorrespondenceResponse(item))
}

// RevertPickup 撤销取件登记
func (h *CorrespondenceHandler) RevertPickup(c *gin.Context) {
	item, err := h.correspondence.RevertPickup(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("correspondence pickup reverted", zap.String("item_id", item.ID))
	Success(c, newCorrespondenceResponse(item))
}

// Return 登记退回寄件人
func (h *CorrespondenceHandler) Return(c *gin.Context) {
	var req returnRequest
	_ = c.ShouldBindJSON(&req)

	item, err := h.correspondence.MarkReturned(c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceResponse(item))
}

// Pending 获取全部待取件信件
func (h *CorrespondenceHandler) Pending(c *gin.Context) {
	items, err := h.correspondence.Pending()
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceList(items))
}

// Today 获取今天收到的信件
func (h *CorrespondenceHandler) Today(c *gin.Context) {
	items, err := h.correspondence.Today()
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceList(items))
}

// Delete 删除信件记录
func (h *CorrespondenceHandler) Delete(c *gin.Context) {
	if err := h.correspondence.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	NoContent(c)
}
