package httptransport

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
)

// ClientHandler 处理客户管理相关的 HTTP 请求
type ClientHandler struct {
	clients        *service.ClientService
	correspondence *service.CorrespondenceService
	log            *zap.Logger
}

// NewClientHandler 创建客户处理器
func NewClientHandler(clients *service.ClientService, correspondence *service.CorrespondenceService, log *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clients:        clients,
		correspondence: correspondence,
		log:            log,
	}
}

type createClientRequest struct {
	Kind     string `json:"kind" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Document string `json:"document" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type updateClientRequest struct {
	Kind     *string `json:"kind"`
	Name     *string `json:"name"`
	Document *string `json:"document"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Active   *bool   `json:"active"`
}

type clientResponse struct {
	*domain.Client
	KindLabel         string `json:"kindLabel"`
	FormattedDocument string `json:"formattedDocument"`
}

func newClientResponse(client *domain.Client) clientResponse {
	return clientResponse{
		Client:            client,
		KindLabel:         client.Kind.Label(),
		FormattedDocument: client.FormattedDocument(),
	}
}

// Create 登记新客户
func (h *ClientHandler) Create(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	client, err := h.clients.Create(service.CreateClientInput{
		Kind:     domain.ClientKind(req.Kind),
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("client registered",
		zap.String("client_id", client.ID),
		zap.String("kind", string(client.Kind)),
	)

	Created(c, newClientResponse(client))
}

// List 获取客户列表
//
// 查询参数: active=true|false, kind=INDIVIDUAL|ORGANIZATION, search=<关键字>
func (h *ClientHandler) List(c *gin.Context) {
	filter := domain.ClientFilter{
		Kind:   domain.ClientKind(c.Query("kind")),
		Search: c.Query("search"),
	}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			BadRequest(c, MsgInvalidRequest)
			return
		}
		filter.Active = &active
	}

	clients, err := h.clients.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, newClientResponse(&clients[i]))
	}
	Success(c, out)
}

// Get 获取客户详情
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clients.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newClientResponse(client))
}

// Update 更新客户信息
func (h *ClientHandler) Update(c *gin.Context) {
	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	input := service.UpdateClientInput{
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Active:   req.Active,
	}
	if req.Kind != nil {
		kind := domain.ClientKind(*req.Kind)
		input.Kind = &kind
	}

	client, err := h.clients.Update(c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newClientResponse(client))
}

// Delete 删除客户及其信箱、信件与合同
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clients.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	NoContent(c)
}

type assignMailboxRequest struct {
	Notes string `json:"notes"`
}

// AssignMailbox 为尚无信箱的客户手工分配信箱
func (h *ClientHandler) AssignMailbox(c *gin.Context) {
	var req assignMailboxRequest
	// 请求体可为空
	_ = c.ShouldBindJSON(&req)

	mailbox, err := h.clients.AssignMailbox(c.Param("id"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("mailbox assigned",
		zap.String("client_id", c.Param("id")),
		zap.String("number", mailbox.Number),
	)

	Created(c, mailbox)
}

// Correspondence 获取客户收到的全部信件
//
// 查询参数: status, kind, from=YYYY-MM-DD, to=YYYY-MM-DD
func (h *ClientHandler) Correspondence(c *gin.Context) {
	// 先确认客户存在，避免把未知客户当作空列表
	if _, err := h.clients.Get(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	filter, ok := parseCorrespondenceFilter(c)
	if !ok {
		return
	}
	filter.ClientID = c.Param("id")
	filter.MailboxID = ""

	items, err := h.correspondence.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, newCorrespondenceList(items))
}
