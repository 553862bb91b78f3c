package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/monitoring"
	"mailhub/backend/internal/storage"
)

var (
	// ErrAlreadyPickedUp 信件已被取走
	ErrAlreadyPickedUp = errors.New("correspondence already picked up")
	// ErrNotPickedUp 信件未处于已取件状态
	ErrNotPickedUp = errors.New("correspondence is not picked up")
	// ErrAlreadyReturned 信件已退回，不能再变更状态
	ErrAlreadyReturned = errors.New("correspondence already returned")
)

// CorrespondenceService 封装信件登记与状态流转业务操作。
//
// 状态机：RECEIVED -> PICKED_UP（可通过 RevertPickup 显式回退），
// RECEIVED -> RETURNED（终态）。
type CorrespondenceService struct {
	store   storage.Store
	metrics *monitoring.Metrics
}

// NewCorrespondenceService 创建信件业务服务，metrics 可以为 nil。
func NewCorrespondenceService(store storage.Store, metrics *monitoring.Metrics) *CorrespondenceService {
	return &CorrespondenceService{
		store:   store,
		metrics: metrics,
	}
}

// RegisterInput 定义登记信件所需的输入。
type RegisterInput struct {
	MailboxID    string
	Description  string
	Kind         domain.CorrespondenceKind
	Sender       string
	TrackingCode string
	Notes        string
	ReceivedAt   *time.Time // 为空时取当前时间
}

// Register 登记到达的信件，初始状态为已收件。
func (s *CorrespondenceService) Register(input RegisterInput) (*domain.CorrespondenceItem, error) {
	if !input.Kind.Valid() {
		return nil, domain.NewValidationError("kind", "unknown correspondence kind")
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.NewValidationError("description", "description is required")
	}

	if _, err := s.store.GetMailbox(input.MailboxID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	receivedAt := now
	if input.ReceivedAt != nil {
		receivedAt = *input.ReceivedAt
	}

	item := &domain.CorrespondenceItem{
		ID:           uuid.NewString(),
		MailboxID:    input.MailboxID,
		ReceivedAt:   receivedAt,
		Description:  description,
		Kind:         input.Kind,
		Status:       domain.StatusReceived,
		Sender:       strings.TrimSpace(input.Sender),
		TrackingCode: strings.TrimSpace(input.TrackingCode),
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateCorrespondence(item); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CorrespondenceReceived.WithLabelValues(string(item.Kind)).Inc()
	}

	return item, nil
}

// PickupInput 定义取件登记的可选信息。
type PickupInput struct {
	PickedUpBy       string     // 取件人姓名
	PickupDocumentID string     // 取件人证件号
	Notes            string     // 追加备注
	PickedUpAt       *time.Time // 为空时取当前时间
}

// MarkPickedUp 将已收件的信件标记为已取件。
func (s *CorrespondenceService) MarkPickedUp(id string, input PickupInput) (*domain.CorrespondenceItem, error) {
	item, err := s.store.GetCorrespondence(id)
	if err != nil {
		return nil, err
	}

	switch item.Status {
	case domain.StatusPickedUp:
		return nil, ErrAlreadyPickedUp
	case domain.StatusReturned:
		return nil, ErrAlreadyReturned
	}

	pickedUpAt := time.Now().UTC()
	if input.PickedUpAt != nil {
		pickedUpAt = *input.PickedUpAt
	}

	item.Status = domain.StatusPickedUp
	item.PickedUpAt = &pickedUpAt
	// 未提供的取件信息保持原值不变
	if by := strings.TrimSpace(input.PickedUpBy); by != "" {
		item.PickedUpBy = by
	}
	if document := strings.TrimSpace(input.PickupDocumentID); document != "" {
		item.PickupDocumentID = document
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		item.Notes = notes
	}

	if err := s.store.UpdateCorrespondence(item); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CorrespondencePickedUp.Inc()
	}

	return item, nil
}

// RevertPickup 撤销取件登记，信件回到已收件状态。
//
// 仅用于纠正误操作，清空全部取件信息。
func (s *CorrespondenceService) RevertPickup(id string) (*domain.CorrespondenceItem, error) {
	item, err := s.store.GetCorrespondence(id)
	if err != nil {
		return nil, err
	}

	if item.Status != domain.StatusPickedUp {
		return nil, ErrNotPickedUp
	}

	item.Status = domain.StatusReceived
	item.PickedUpAt = nil
	item.PickedUpBy = ""
	item.PickupDocumentID = ""

	if err := s.store.UpdateCorrespondence(item); err != nil {
		return nil, err
	}
	return item, nil
}

// MarkReturned 将未取件的信件标记为已退回寄件人。
func (s *CorrespondenceService) MarkReturned(id string, notes string) (*domain.CorrespondenceItem, error) {
	item, err := s.store.GetCorrespondence(id)
	if err != nil {
		return nil, err
	}

	switch item.Status {
	case domain.StatusPickedUp:
		return nil, ErrAlreadyPickedUp
	case domain.StatusReturned:
		return nil, ErrAlreadyReturned
	}

	item.Status = domain.StatusReturned
	if notes = strings.TrimSpace(notes); notes != "" {
		item.Notes = notes
	}

	if err := s.store.UpdateCorrespondence(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get 根据 ID 获取信件。
func (s *CorrespondenceService) Get(id string) (*domain.CorrespondenceItem, error) {
	return s.store.GetCorrespondence(id)
}

// List 返回按收件时间倒序排列的信件列表。
func (s *CorrespondenceService) List(filter domain.CorrespondenceFilter) ([]domain.CorrespondenceItem, error) {
	return s.store.ListCorrespondence(filter)
}

// Pending 返回全部待取件的信件。
func (s *CorrespondenceService) Pending() ([]domain.CorrespondenceItem, error) {
	return s.store.ListCorrespondence(domain.CorrespondenceFilter{
		Status: domain.StatusReceived,
	})
}

// Today 返回今天收到的全部信件。
func (s *CorrespondenceService) Today() ([]domain.CorrespondenceItem, error) {
	today := domain.DateOnly(time.Now())
	return s.store.ListCorrespondence(domain.CorrespondenceFilter{
		From: today,
		To:   today,
	})
}

// Delete 删除信件记录。
func (s *CorrespondenceService) Delete(id string) error {
	return s.store.DeleteCorrespondence(id)
}
