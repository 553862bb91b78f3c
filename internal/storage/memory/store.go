package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

// Store 使用内存保存全部业务数据，主要用于开发与测试。
//
// 读写均按值拷贝，调用方持有的结构体与存储内部状态互不共享；
// 业务层校验失败时丢弃手中副本即可，存储不会被部分更新。
type Store struct {
	mu             sync.RWMutex
	clients        map[string]*domain.Client
	byDocument     map[string]string // document -> clientID
	mailboxes      map[string]*domain.Mailbox
	byClient       map[string]string // clientID -> mailboxID
	byNumber       map[string]string // number -> mailboxID
	correspondence map[string]*domain.CorrespondenceItem
	contracts      map[string]*domain.Contract
	staff          map[string]*domain.StaffUser
	byUsername     map[string]string // username -> staffID
}

// NewStore 创建内存存储实例。
func NewStore() *Store {
	return &Store{
		clients:        make(map[string]*domain.Client),
		byDocument:     make(map[string]string),
		mailboxes:      make(map[string]*domain.Mailbox),
		byClient:       make(map[string]string),
		byNumber:       make(map[string]string),
		correspondence: make(map[string]*domain.CorrespondenceItem),
		contracts:      make(map[string]*domain.Contract),
		staff:          make(map[string]*domain.StaffUser),
		byUsername:     make(map[string]string),
	}
}

// ========== Client Repository ==========

// CreateClient 保存新客户，税号重复时返回冲突错误。
func (s *Store) CreateClient(client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byDocument[client.Document]; exists {
		return storage.ErrDocumentExists
	}

	stored := *client
	s.clients[client.ID] = &stored
	s.byDocument[client.Document] = client.ID
	return nil
}

// GetClient 根据 ID 获取客户。
func (s *Store) GetClient(id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	out := *client
	return &out, nil
}

// GetClientByDocument 根据税号获取客户。
func (s *Store) GetClientByDocument(document string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byDocument[document]
	if !ok {
		return nil, storage.ErrClientNotFound
	}
	out := *s.clients[id]
	return &out, nil
}

// UpdateClient 更新客户信息。
func (s *Store) UpdateClient(client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.clients[client.ID]
	if !ok {
		return storage.ErrClientNotFound
	}

	// 税号变更时维护唯一索引
	if old.Document != client.Document {
		if owner, exists := s.byDocument[client.Document]; exists && owner != client.ID {
			return storage.ErrDocumentExists
		}
		delete(s.byDocument, old.Document)
		s.byDocument[client.Document] = client.ID
	}

	stored := *client
	s.clients[client.ID] = &stored
	return nil
}

// DeleteClient 删除客户，级联删除其信箱、信件与合同。
func (s *Store) DeleteClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[id]
	if !ok {
		return storage.ErrClientNotFound
	}

	if mailboxID, exists := s.byClient[id]; exists {
		s.deleteMailboxLocked(mailboxID)
	}
	for contractID, contract := range s.contracts {
		if contract.ClientID == id {
			delete(s.contracts, contractID)
		}
	}

	delete(s.byDocument, client.Document)
	delete(s.clients, id)
	return nil
}

// ListClients 返回按姓名升序排列的客户列表。
func (s *Store) ListClients(filter domain.ClientFilter) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	result := make([]domain.Client, 0, len(s.clients))
	for _, client := range s.clients {
		if filter.Active != nil && client.Active != *filter.Active {
			continue
		}
		if filter.Kind != "" && client.Kind != filter.Kind {
			continue
		}
		if search != "" && !clientMatchesSearch(client, search) {
			continue
		}
		result = append(result, *client)
	}

	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

// clientMatchesSearch 对姓名/税号/邮箱做大小写不敏感的子串匹配。
func clientMatchesSearch(client *domain.Client, search string) bool {
	return strings.Contains(strings.ToLower(client.Name), search) ||
		strings.Contains(strings.ToLower(client.Document), search) ||
		strings.Contains(strings.ToLower(client.Email), search)
}

// ========== Mailbox Repository ==========

// CreateMailbox 保存新信箱，客户已有信箱或编号重复时返回冲突错误。
func (s *Store) CreateMailbox(mailbox *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byClient[mailbox.ClientID]; exists {
		return storage.ErrMailboxExists
	}
	if _, exists := s.byNumber[mailbox.Number]; exists {
		return storage.ErrNumberExists
	}

	stored := *mailbox
	s.mailboxes[mailbox.ID] = &stored
	s.byClient[mailbox.ClientID] = mailbox.ID
	s.byNumber[mailbox.Number] = mailbox.ID
	return nil
}

// GetMailbox 根据 ID 获取信箱。
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mailbox, ok := s.mailboxes[id]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	out := *mailbox
	return &out, nil
}

// GetMailboxByClientID 获取客户拥有的信箱。
func (s *Store) GetMailboxByClientID(clientID string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byClient[clientID]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	out := *s.mailboxes[id]
	return &out, nil
}

// UpdateMailbox 更新信箱信息（编号不可变更）。
func (s *Store) UpdateMailbox(mailbox *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.mailboxes[mailbox.ID]
	if !ok {
		return storage.ErrMailboxNotFound
	}
	stored := *mailbox
	// 编号一经分配不可变
	stored.Number = old.Number
	s.mailboxes[mailbox.ID] = &stored
	return nil
}

// DeleteMailbox 删除信箱并级联删除其全部信件。
func (s *Store) DeleteMailbox(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[id]; !ok {
		return storage.ErrMailboxNotFound
	}
	s.deleteMailboxLocked(id)
	return nil
}

// deleteMailboxLocked 删除信箱及其信件，调用方必须持有写锁。
func (s *Store) deleteMailboxLocked(id string) {
	mailbox, ok := s.mailboxes[id]
	if !ok {
		return
	}
	for itemID, item := range s.correspondence {
		if item.MailboxID == id {
			delete(s.correspondence, itemID)
		}
	}
	delete(s.byClient, mailbox.ClientID)
	delete(s.byNumber, mailbox.Number)
	delete(s.mailboxes, id)
}

// ListMailboxes 返回按编号升序排列的信箱列表。
func (s *Store) ListMailboxes(filter domain.MailboxFilter) ([]domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Mailbox, 0, len(s.mailboxes))
	for _, mailbox := range s.mailboxes {
		if filter.Active != nil && mailbox.Active != *filter.Active {
			continue
		}
		if filter.ClientID != "" && mailbox.ClientID != filter.ClientID {
			continue
		}
		result = append(result, *mailbox)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result, nil
}

// MaxMailboxNumber 返回纯数字信箱编号中的最大值，没有时返回 0。
func (s *Store) MaxMailboxNumber() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for number := range s.byNumber {
		value, err := strconv.Atoi(number)
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}

// ========== Correspondence Repository ==========

// CreateCorrespondence 保存新信件。
func (s *Store) CreateCorrespondence(item *domain.CorrespondenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[item.MailboxID]; !ok {
		return storage.ErrMailboxNotFound
	}
	stored := *item
	s.correspondence[item.ID] = &stored
	return nil
}

// GetCorrespondence 根据 ID 获取信件。
func (s *Store) GetCorrespondence(id string) (*domain.CorrespondenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.correspondence[id]
	if !ok {
		return nil, storage.ErrCorrespondenceNotFound
	}
	out := *item
	return &out, nil
}

// UpdateCorrespondence 更新信件信息。
func (s *Store) UpdateCorrespondence(item *domain.CorrespondenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.correspondence[item.ID]; !ok {
		return storage.ErrCorrespondenceNotFound
	}
	stored := *item
	s.correspondence[item.ID] = &stored
	return nil
}

// DeleteCorrespondence 删除信件。
func (s *Store) DeleteCorrespondence(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.correspondence[id]; !ok {
		return storage.ErrCorrespondenceNotFound
	}
	delete(s.correspondence, id)
	return nil
}

// ListCorrespondence 返回按收件时间倒序排列的信件列表。
func (s *Store) ListCorrespondence(filter domain.CorrespondenceFilter) ([]domain.CorrespondenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// 按客户过滤时先定位其信箱
	mailboxID := filter.MailboxID
	if filter.ClientID != "" {
		id, ok := s.byClient[filter.ClientID]
		if !ok {
			return []domain.CorrespondenceItem{}, nil
		}
		if mailboxID != "" && mailboxID != id {
			return []domain.CorrespondenceItem{}, nil
		}
		mailboxID = id
	}

	result := make([]domain.CorrespondenceItem, 0, len(s.correspondence))
	for _, item := range s.correspondence {
		if mailboxID != "" && item.MailboxID != mailboxID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		received := domain.DateOnly(item.ReceivedAt)
		if !filter.From.IsZero() && received.Before(domain.DateOnly(filter.From)) {
			continue
		}
		if !filter.To.IsZero() && received.After(domain.DateOnly(filter.To)) {
			continue
		}
		result = append(result, *item)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})
	return result, nil
}

// ========== Contract Repository ==========

// CreateContract 保存新合同。
func (s *Store) CreateContract(contract *domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[contract.ClientID]; !ok {
		return storage.ErrClientNotFound
	}
	stored := *contract
	s.contracts[contract.ID] = &stored
	return nil
}

// GetContract 根据 ID 获取合同。
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, storage.ErrContractNotFound
	}
	out := *contract
	return &out, nil
}

// UpdateContract 更新合同信息。
func (s *Store) UpdateContract(contract *domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[contract.ID]; !ok {
		return storage.ErrContractNotFound
	}
	stored := *contract
	s.contracts[contract.ID] = &stored
	return nil
}

// DeleteContract 删除合同。
func (s *Store) DeleteContract(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return storage.ErrContractNotFound
	}
	delete(s.contracts, id)
	return nil
}

// ListContracts 返回按起始日期倒序排列的合同列表。
func (s *Store) ListContracts(filter domain.ContractFilter) ([]domain.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Contract, 0, len(s.contracts))
	for _, contract := range s.contracts {
		if filter.ClientID != "" && contract.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && contract.Status != filter.Status {
			continue
		}
		if filter.Plan != "" && contract.Plan != filter.Plan {
			continue
		}
		result = append(result, *contract)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

// ========== Staff Repository ==========

// CreateStaff 保存操作员账号。
func (s *Store) CreateStaff(user *domain.StaffUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, exists := s.byUsername[key]; exists {
		return storage.ErrUsernameExists
	}
	stored := *user
	s.staff[user.ID] = &stored
	s.byUsername[key] = user.ID
	return nil
}

// GetStaffByID 根据 ID 获取操作员。
func (s *Store) GetStaffByID(id string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.staff[id]
	if !ok {
		return nil, storage.ErrStaffNotFound
	}
	out := *user
	return &out, nil
}

// GetStaffByUsername 根据用户名获取操作员。
func (s *Store) GetStaffByUsername(username string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, storage.ErrStaffNotFound
	}
	out := *s.staff[id]
	return &out, nil
}

// UpdateStaffLastLogin 更新操作员最后登录时间。
func (s *Store) UpdateStaffLastLogin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.staff[id]
	if !ok {
		return storage.ErrStaffNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

// ========== Dashboard Repository ==========

// DashboardSnapshot 即时统计看板数据。
func (s *Store) DashboardSnapshot() (*domain.DashboardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &domain.DashboardSnapshot{
		ByKind:   make(map[domain.CorrespondenceKind]int),
		ByStatus: make(map[domain.CorrespondenceStatus]int),
	}

	for _, client := range s.clients {
		if client.Active {
			snapshot.ActiveClients++
		}
	}
	snapshot.TotalClients = snapshot.ActiveClients

	for _, mailbox := range s.mailboxes {
		if mailbox.Active {
			snapshot.ActiveMailboxes++
		}
	}

	today := domain.DateOnly(time.Now())
	weekAgo := today.AddDate(0, 0, -7)
	for _, item := range s.correspondence {
		snapshot.ByKind[item.Kind]++
		snapshot.ByStatus[item.Status]++

		if item.Status == domain.StatusReceived {
			snapshot.PendingCorrespondence++
		}

		received := domain.DateOnly(item.ReceivedAt)
		if received.Equal(today) {
			snapshot.CorrespondenceToday++
		}
		if !received.Before(weekAgo) && !received.After(today) {
			snapshot.CorrespondenceLast7d++
		}
	}

	for _, contract := range s.contracts {
		if contract.Status == domain.ContractActive {
			snapshot.ActiveContracts++
		}
	}

	return snapshot, nil
}

// Health 内存存储始终可用。
func (s *Store) Health() error {
	return nil
}
