package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailhub/backend/internal/config"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/monitoring"
	"mailhub/backend/internal/storage"
)

// ClientService 封装客户登记与管理业务操作。
type ClientService struct {
	store     storage.Store
	mailboxes *MailboxService
	cfg       *config.Config
	metrics   *monitoring.Metrics
	log       *zap.Logger
}

// NewClientService 创建客户业务服务，metrics 可以为 nil。
func NewClientService(store storage.Store, mailboxes *MailboxService, cfg *config.Config, metrics *monitoring.Metrics, log *zap.Logger) *ClientService {
	return &ClientService{
		store:     store,
		mailboxes: mailboxes,
		cfg:       cfg,
		metrics:   metrics,
		log:       log,
	}
}

// CreateClientInput 定义登记客户所需的输入。
type CreateClientInput struct {
	Kind     domain.ClientKind
	Name     string
	Document string
	Email    string
	Phone    string
	Address  string
}

// Create 登记新客户。
//
// 税号按客户类型校验位数并归一化为纯数字存储；
// 登记成功后自动为客户分配信箱（可通过配置关闭）。
func (s *ClientService) Create(input CreateClientInput) (*domain.Client, error) {
	if !input.Kind.Valid() {
		return nil, domain.NewValidationError("kind", "unknown client kind")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}

	document, err := domain.ValidateDocument(input.Document, input.Kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ID:        uuid.NewString(),
		Kind:      input.Kind,
		Name:      name,
		Document:  document,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateClient(client); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ClientsCreated.Inc()
	}

	// 自动分配信箱；失败不回滚客户，信箱可在之后手工分配
	if s.cfg.Mailroom.AutoMailbox {
		note := fmt.Sprintf("mailbox created automatically for %s", client.Name)
		if _, err := s.mailboxes.AssignToClient(client.ID, note); err != nil {
			s.log.Warn("failed to auto-assign mailbox",
				zap.String("client_id", client.ID),
				zap.Error(err),
			)
		} else if s.metrics != nil {
			s.metrics.MailboxesAssigned.Inc()
		}
	}

	return client, nil
}

// Get 根据 ID 获取客户。
func (s *ClientService) Get(id string) (*domain.Client, error) {
	return s.store.GetClient(id)
}

// List 返回按姓名升序排列的客户列表。
func (s *ClientService) List(filter domain.ClientFilter) ([]domain.Client, error) {
	return s.store.ListClients(filter)
}

// UpdateClientInput 定义客户可修改的字段，nil 表示保持不变。
type UpdateClientInput struct {
	Kind     *domain.ClientKind
	Name     *string
	Document *string
	Email    *string
	Phone    *string
	Address  *string
	Active   *bool
}

// Update 更新客户信息，税号或类型变更时重新校验位数。
func (s *ClientService) Update(id string, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.store.GetClient(id)
	if err != nil {
		return nil, err
	}

	if input.Kind != nil {
		if !input.Kind.Valid() {
			return nil, domain.NewValidationError("kind", "unknown client kind")
		}
		client.Kind = *input.Kind
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "name is required")
		}
		client.Name = name
	}
	if input.Document != nil {
		client.Document = *input.Document
	}

	// 类型和税号任一变化都要重新校验
	if input.Document != nil || input.Kind != nil {
		document, err := domain.ValidateDocument(client.Document, client.Kind)
		if err != nil {
			return nil, err
		}
		client.Document = document
	}

	if input.Email != nil {
		client.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		client.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		client.Address = strings.TrimSpace(*input.Address)
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.store.UpdateClient(client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete 删除客户并级联删除其信箱、信件与合同。
func (s *ClientService) Delete(id string) error {
	return s.store.DeleteClient(id)
}

// AssignMailbox 为尚无信箱的客户手工分配信箱。
func (s *ClientService) AssignMailbox(clientID, notes string) (*domain.Mailbox, error) {
	mailbox, err := s.mailboxes.AssignToClient(clientID, notes)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.MailboxesAssigned.Inc()
	}
	return mailbox, nil
}
