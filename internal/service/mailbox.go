package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailhub/backend/internal/config"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

// MailboxService 封装信箱分配与管理业务操作。
type MailboxService struct {
	store storage.Store
	cfg   *config.Config

	// 序列化编号分配，防止并发创建拿到相同的最大编号。
	// 存储层的编号唯一索引是最后一道防线。
	numberMu sync.Mutex
}

// NewMailboxService 创建信箱业务服务。
func NewMailboxService(store storage.Store, cfg *config.Config) *MailboxService {
	return &MailboxService{
		store: store,
		cfg:   cfg,
	}
}

// AssignToClient 为客户分配新信箱，编号自动取当前最大编号加一。
func (s *MailboxService) AssignToClient(clientID, notes string) (*domain.Mailbox, error) {
	client, err := s.store.GetClient(clientID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetMailboxByClientID(client.ID); err == nil {
		return nil, storage.ErrMailboxExists
	} else if !errors.Is(err, storage.ErrMailboxNotFound) {
		return nil, err
	}

	s.numberMu.Lock()
	defer s.numberMu.Unlock()

	// 编号冲突说明有其他写入绕过了互斥锁（如多实例部署），重试一次
	for attempt := 0; attempt < 2; attempt++ {
		number, err := s.nextNumber()
		if err != nil {
			return nil, err
		}

		mailbox := &domain.Mailbox{
			ID:        uuid.NewString(),
			Number:    number,
			ClientID:  client.ID,
			Notes:     notes,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}

		err = s.store.CreateMailbox(mailbox)
		if err == nil {
			return mailbox, nil
		}
		if !errors.Is(err, storage.ErrNumberExists) {
			return nil, err
		}
	}

	return nil, storage.ErrNumberExists
}

// nextNumber 计算下一个信箱编号（最大纯数字编号加一，补零到配置宽度）
func (s *MailboxService) nextNumber() (string, error) {
	max, err := s.store.MaxMailboxNumber()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", s.cfg.Mailroom.NumberWidth, max+1), nil
}

// Get 根据 ID 获取信箱。
func (s *MailboxService) Get(id string) (*domain.Mailbox, error) {
	return s.store.GetMailbox(id)
}

// GetByClient 获取客户的信箱。
func (s *MailboxService) GetByClient(clientID string) (*domain.Mailbox, error) {
	return s.store.GetMailboxByClientID(clientID)
}

// List 返回按编号升序排列的信箱列表。
func (s *MailboxService) List(filter domain.MailboxFilter) ([]domain.Mailbox, error) {
	return s.store.ListMailboxes(filter)
}

// UpdateMailboxInput 定义信箱可修改的字段，编号不可变更。
type UpdateMailboxInput struct {
	Notes  *string
	Active *bool
}

// Update 更新信箱备注或启用状态。
func (s *MailboxService) Update(id string, input UpdateMailboxInput) (*domain.Mailbox, error) {
	mailbox, err := s.store.GetMailbox(id)
	if err != nil {
		return nil, err
	}

	if input.Notes != nil {
		mailbox.Notes = *input.Notes
	}
	if input.Active != nil {
		mailbox.Active = *input.Active
	}

	if err := s.store.UpdateMailbox(mailbox); err != nil {
		return nil, err
	}
	return mailbox, nil
}

// Delete 删除信箱并级联删除其全部信件。
func (s *MailboxService) Delete(id string) error {
	return s.store.DeleteMailbox(id)
}
