package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

// Store 基于 GORM 的关系型数据库存储实现（PostgreSQL / MySQL）。
type Store struct {
	db *gorm.DB
}

// NewStore 创建 PostgreSQL 存储实例。
func NewStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(postgres.Open(dsn))
}

// NewMySQLStore 创建 MySQL 存储实例。
func NewMySQLStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(mysql.Open(dsn))
}

// NewStoreWithDialector 使用指定的 GORM dialector 创建存储实例。
func NewStoreWithDialector(dialector gorm.Dialector) (*Store, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate 自动迁移数据库表结构。
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.Client{},
		&domain.Mailbox{},
		&domain.CorrespondenceItem{},
		&domain.Contract{},
		&domain.StaffUser{},
	)
}

// isDuplicateError 判断是否为唯一约束冲突。
func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// ========== Client Repository ==========

// CreateClient 保存新客户。
func (s *Store) CreateClient(client *domain.Client) error {
	if err := s.db.Create(client).Error; err != nil {
		if isDuplicateError(err) {
			return storage.ErrDocumentExists
		}
		return err
	}
	return nil
}

// GetClient 根据 ID 获取客户。
func (s *Store) GetClient(id string) (*domain.Client, error) {
	var client domain.Client
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetClientByDocument 根据税号获取客户。
func (s *Store) GetClientByDocument(document string) (*domain.Client, error) {
	var client domain.Client
	if err := s.db.Where("document = ?", document).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// UpdateClient 更新客户信息。
func (s *Store) UpdateClient(client *domain.Client) error {
	result := s.db.Model(&domain.Client{}).Where("id = ?", client.ID).
		Select("kind", "name", "document", "email", "phone", "address", "active", "updated_at").
		Updates(client)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return storage.ErrDocumentExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrClientNotFound
	}
	return nil
}

// DeleteClient 删除客户并级联删除其信箱、信件与合同。
func (s *Store) DeleteClient(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var client domain.Client
		if err := tx.Where("id = ?", id).First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrClientNotFound
			}
			return err
		}

		var mailbox domain.Mailbox
		err := tx.Where("client_id = ?", id).First(&mailbox).Error
		if err == nil {
			if err := tx.Where("mailbox_id = ?", mailbox.ID).Delete(&domain.CorrespondenceItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&mailbox).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Where("client_id = ?", id).Delete(&domain.Contract{}).Error; err != nil {
			return err
		}
		return tx.Delete(&client).Error
	})
}

// ListClients 返回按姓名升序排列的客户列表。
func (s *Store) ListClients(filter domain.ClientFilter) ([]domain.Client, error) {
	query := s.db.Model(&domain.Client{})
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(document) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var clients []domain.Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// ========== Mailbox Repository ==========

// CreateMailbox 保存新信箱。
func (s *Store) CreateMailbox(mailbox *domain.Mailbox) error {
	var count int64
	if err := s.db.Model(&domain.Mailbox{}).Where("client_id = ?", mailbox.ClientID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrMailboxExists
	}

	if err := s.db.Create(mailbox).Error; err != nil {
		if isDuplicateError(err) {
			return storage.ErrNumberExists
		}
		return err
	}
	return nil
}

// GetMailbox 根据 ID 获取信箱。
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	if err := s.db.Where("id = ?", id).First(&mailbox).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrMailboxNotFound
		}
		return nil, err
	}
	return &mailbox, nil
}

// GetMailboxByClientID 获取客户拥有的信箱。
func (s *Store) GetMailboxByClientID(clientID string) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	if err := s.db.Where("client_id = ?", clientID).First(&mailbox).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrMailboxNotFound
		}
		return nil, err
	}
	return &mailbox, nil
}

// UpdateMailbox 更新信箱信息（编号不可变更）。
func (s *Store) UpdateMailbox(mailbox *domain.Mailbox) error {
	result := s.db.Model(&domain.Mailbox{}).Where("id = ?", mailbox.ID).
		Select("notes", "active").
		Updates(mailbox)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrMailboxNotFound
	}
	return nil
}

// DeleteMailbox 删除信箱并级联删除其全部信件。
func (s *Store) DeleteMailbox(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var mailbox domain.Mailbox
		if err := tx.Where("id = ?", id).First(&mailbox).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return storage.ErrMailboxNotFound
			}
			return err
		}
		if err := tx.Where("mailbox_id = ?", id).Delete(&domain.CorrespondenceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&mailbox).Error
	})
}

// ListMailboxes 返回按编号升序排列的信箱列表。
func (s *Store) ListMailboxes(filter domain.MailboxFilter) ([]domain.Mailbox, error) {
	query := s.db.Model(&domain.Mailbox{})
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}

	var mailboxes []domain.Mailbox
	if err := query.Order("number ASC").Find(&mailboxes).Error; err != nil {
		return nil, err
	}
	return mailboxes, nil
}

// MaxMailboxNumber 返回纯数字信箱编号中的最大值，没有时返回 0。
func (s *Store) MaxMailboxNumber() (int, error) {
	var numbers []string
	if err := s.db.Model(&domain.Mailbox{}).Pluck("number", &numbers).Error; err != nil {
		return 0, err
	}

	max := 0
	for _, number := range numbers {
		value, err := parseNumeric(number)
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}

// parseNumeric 解析纯数字编号。
func parseNumeric(number string) (int, error) {
	if number == "" {
		return 0, fmt.Errorf("empty number")
	}
	value := 0
	for _, r := range number {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric number: %q", number)
		}
		value = value*10 + int(r-'0')
	}
	return value, nil
}

// ========== Correspondence Repository ==========

// CreateCorrespondence 保存新信件。
func (s *Store) CreateCorrespondence(item *domain.CorrespondenceItem) error {
	var count int64
	if err := s.db.Model(&domain.Mailbox{}).Where("id = ?", item.MailboxID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrMailboxNotFound
	}
	return s.db.Create(item).Error
}

// GetCorrespondence 根据 ID 获取信件。
func (s *Store) GetCorrespondence(id string) (*domain.CorrespondenceItem, error) {
	var item domain.CorrespondenceItem
	if err := s.db.Where("id = ?", id).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrCorrespondenceNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateCorrespondence 更新信件信息。
func (s *Store) UpdateCorrespondence(item *domain.CorrespondenceItem) error {
	result := s.db.Model(&domain.CorrespondenceItem{}).Where("id = ?", item.ID).
		Select("received_at", "description", "kind", "status", "picked_up_at",
			"sender", "tracking_code", "notes", "picked_up_by", "pickup_document_id", "updated_at").
		Updates(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrCorrespondenceNotFound
	}
	return nil
}

// DeleteCorrespondence 删除信件。
func (s *Store) DeleteCorrespondence(id string) error {
	result := s.db.Where("id = ?", id).Delete(&domain.CorrespondenceItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrCorrespondenceNotFound
	}
	return nil
}

// ListCorrespondence 返回按收件时间倒序排列的信件列表。
func (s *Store) ListCorrespondence(filter domain.CorrespondenceFilter) ([]domain.CorrespondenceItem, error) {
	query := s.db.Model(&domain.CorrespondenceItem{})

	if filter.ClientID != "" {
		mailbox, err := s.GetMailboxByClientID(filter.ClientID)
		if err != nil {
			if errors.Is(err, storage.ErrMailboxNotFound) {
				return []domain.CorrespondenceItem{}, nil
			}
			return nil, err
		}
		if filter.MailboxID != "" && filter.MailboxID != mailbox.ID {
			return []domain.CorrespondenceItem{}, nil
		}
		query = query.Where("mailbox_id = ?", mailbox.ID)
	} else if filter.MailboxID != "" {
		query = query.Where("mailbox_id = ?", filter.MailboxID)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if !filter.From.IsZero() {
		query = query.Where("received_at >= ?", domain.DateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		// 含 To 当天的全部时刻
		query = query.Where("received_at < ?", domain.DateOnly(filter.To).AddDate(0, 0, 1))
	}

	var items []domain.CorrespondenceItem
	if err := query.Order("received_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ========== Contract Repository ==========

// CreateContract 保存新合同。
func (s *Store) CreateContract(contract *domain.Contract) error {
	var count int64
	if err := s.db.Model(&domain.Client{}).Where("id = ?", contract.ClientID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrClientNotFound
	}
	return s.db.Create(contract).Error
}

// GetContract 根据 ID 获取合同。
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	var contract domain.Contract
	if err := s.db.Where("id = ?", id).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrContractNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// UpdateContract 更新合同信息。
func (s *Store) UpdateContract(contract *domain.Contract) error {
	result := s.db.Model(&domain.Contract{}).Where("id = ?", contract.ID).
		Select("plan", "monthly_value", "start_date", "duration_months", "status", "notes", "updated_at").
		Updates(contract)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrContractNotFound
	}
	return nil
}

// DeleteContract 删除合同。
func (s *Store) DeleteContract(id string) error {
	result := s.db.Where("id = ?", id).Delete(&domain.Contract{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrContractNotFound
	}
	return nil
}

// ListContracts 返回按起始日期倒序排列的合同列表。
func (s *Store) ListContracts(filter domain.ContractFilter) ([]domain.Contract, error) {
	query := s.db.Model(&domain.Contract{})
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		query = query.Where("plan = ?", filter.Plan)
	}

	var contracts []domain.Contract
	if err := query.Order("start_date DESC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// ========== Staff Repository ==========

// CreateStaff 保存操作员账号。
func (s *Store) CreateStaff(user *domain.StaffUser) error {
	if err := s.db.Create(user).Error; err != nil {
		if isDuplicateError(err) {
			return storage.ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetStaffByID 根据 ID 获取操作员。
func (s *Store) GetStaffByID(id string) (*domain.StaffUser, error) {
	var user domain.StaffUser
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrStaffNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetStaffByUsername 根据用户名获取操作员。
func (s *Store) GetStaffByUsername(username string) (*domain.StaffUser, error) {
	var user domain.StaffUser
	if err := s.db.Where("LOWER(username) = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrStaffNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateStaffLastLogin 更新操作员最后登录时间。
func (s *Store) UpdateStaffLastLogin(id string) error {
	result := s.db.Model(&domain.StaffUser{}).Where("id = ?", id).
		Update("last_login_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrStaffNotFound
	}
	return nil
}

// ========== Dashboard Repository ==========

// DashboardSnapshot 即时统计看板数据。
func (s *Store) DashboardSnapshot() (*domain.DashboardSnapshot, error) {
	snapshot := &domain.DashboardSnapshot{
		ByKind:   make(map[domain.CorrespondenceKind]int),
		ByStatus: make(map[domain.CorrespondenceStatus]int),
	}

	var count int64
	if err := s.db.Model(&domain.Client{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.ActiveClients = int(count)
	snapshot.TotalClients = int(count)

	if err := s.db.Model(&domain.Mailbox{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.ActiveMailboxes = int(count)

	if err := s.db.Model(&domain.CorrespondenceItem{}).
		Where("status = ?", domain.StatusReceived).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.PendingCorrespondence = int(count)

	today := domain.DateOnly(time.Now())
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := today.AddDate(0, 0, -7)

	if err := s.db.Model(&domain.CorrespondenceItem{}).
		Where("received_at >= ? AND received_at < ?", today, tomorrow).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.CorrespondenceToday = int(count)

	if err := s.db.Model(&domain.CorrespondenceItem{}).
		Where("received_at >= ? AND received_at < ?", weekAgo, tomorrow).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.CorrespondenceLast7d = int(count)

	if err := s.db.Model(&domain.Contract{}).
		Where("status = ?", domain.ContractActive).Count(&count).Error; err != nil {
		return nil, err
	}
	snapshot.ActiveContracts = int(count)

	type kindCount struct {
		Kind  domain.CorrespondenceKind
		Count int
	}
	var kinds []kindCount
	if err := s.db.Model(&domain.CorrespondenceItem{}).
		Select("kind, COUNT(*) AS count").Group("kind").Scan(&kinds).Error; err != nil {
		return nil, err
	}
	for _, kc := range kinds {
		snapshot.ByKind[kc.Kind] = kc.Count
	}

	type statusCount struct {
		Status domain.CorrespondenceStatus
		Count  int
	}
	var statuses []statusCount
	if err := s.db.Model(&domain.CorrespondenceItem{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&statuses).Error; err != nil {
		return nil, err
	}
	for _, sc := range statuses {
		snapshot.ByStatus[sc.Status] = sc.Count
	}

	return snapshot, nil
}

// Health 检查数据库连接状态。
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
