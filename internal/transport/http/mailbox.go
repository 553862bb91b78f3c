package httptransport

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
)

// MailboxHandler 处理信箱管理相关的 HTTP 请求
type MailboxHandler struct {
	mailboxes      *service.MailboxService
	correspondence *service.CorrespondenceService
	log            *zap.Logger
}

// NewMailboxHandler 创建信箱处理器
func NewMailboxHandler(mailboxes *service.MailboxService, correspondence *service.CorrespondenceService, log *zap.Logger) *MailboxHandler {
	return &MailboxHandler{
		mailboxes:      mailboxes,
		correspondence: correspondence,
		log:            log,
	}
}

type updateMailboxRequest struct {
	Notes  *string `json:"notes"`
	Active *bool   `json:"active"`
}

// List 获取信箱列表
//
// 查询参数: active=true|false, clientId=<客户ID>
func (h *MailboxHandler) List(c *gin.Context) {
	filter := domain.MailboxFilter{
		ClientID: c.Query("clientId"),
	}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			BadRequest(c, MsgInvalidRequest)
			return
		}
		filter.Active = &active
	}

	mailboxes, err := h.mailboxes.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, mailboxes)
}

// Get 获取信箱详情
func (h *MailboxHandler) Get(c *gin.Context) {
	mailbox, err := h.mailboxes.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, mailbox)
}

// Update 更新信箱备注或启用状态，编号不可变更
func (h *MailboxHandler) Update(c *gin.Context) {
	var req updateMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mailbox, err := h.mailboxes.Update(c.Param("id"), service.UpdateMailboxInput{
		Notes:  req.Notes,
		Active: req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, mailbox)
}

// Delete 删除信箱及其全部信件
func (h *MailboxHandler) Delete(c *gin.Context) {
	if err := h.mailboxes.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("mailbox deleted", zap.String("mailbox_id", c.Param("id")))
	NoContent(c)
}

// Correspondence 获取信箱中的信件列表
func (h *MailboxHandler) Correspondence(c *gin.Context) {
	if _, err := h.mailboxes.Get(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.correspondence.List(domain.CorrespondenceFilter{
		MailboxID: c.Param("id"),
		Status:    domain.CorrespondenceStatus(c.Query("status")),
		Kind:      domain.CorrespondenceKind(c.Query("kind")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceList(items))
}
