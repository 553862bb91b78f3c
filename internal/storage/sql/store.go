package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

// Store 基于 database/sql 的存储实现（支持 MySQL 5.7+ 和 PostgreSQL）。
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB // 仅用于建表迁移
	driverName string   // "mysql" 或 "postgres"
}

// NewStore 创建 SQL 数据库存储。
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	if driverName == "mysql" {
		dialector = mysql.New(mysql.Config{Conn: db})
	} else {
		dialector = postgres.New(postgres.Config{Conn: db})
	}

	gormDB, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	store := &Store{
		db:         db,
		gormDB:     gormDB,
		driverName: driverName,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 检查数据库连接状态。
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}

// migrate 建表迁移（复用 GORM AutoMigrate）。
func (s *Store) migrate() error {
	return s.gormDB.AutoMigrate(
		&domain.Client{},
		&domain.Mailbox{},
		&domain.CorrespondenceItem{},
		&domain.Contract{},
		&domain.StaffUser{},
	)
}

// rebind 将 ? 占位符重写为 PostgreSQL 的 $n 形式。
func (s *Store) rebind(query string) string {
	if s.driverName != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isDuplicateError 判断是否为唯一约束冲突。
func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// ========== Client Repository ==========

const clientColumns = "id, kind, name, document, email, phone, address, active, created_at, updated_at"

// scanClient 从查询结果扫描客户记录。
func scanClient(row interface{ Scan(...interface{}) error }) (*domain.Client, error) {
	var c domain.Client
	var phone, address sql.NullString
	err := row.Scan(&c.ID, &c.Kind, &c.Name, &c.Document, &c.Email,
		&phone, &address, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.Address = address.String
	return &c, nil
}

// CreateClient 保存新客户。
func (s *Store) CreateClient(client *domain.Client) error {
	query := s.rebind(`INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query,
		client.ID, client.Kind, client.Name, client.Document, client.Email,
		client.Phone, client.Address, client.Active, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return storage.ErrDocumentExists
		}
		return err
	}
	return nil
}

// GetClient 根据 ID 获取客户。
func (s *Store) GetClient(id string) (*domain.Client, error) {
	query := s.rebind(`SELECT ` + clientColumns + ` FROM clients WHERE id = ?`)
	client, err := scanClient(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// GetClientByDocument 根据税号获取客户。
func (s *Store) GetClientByDocument(document string) (*domain.Client, error) {
	query := s.rebind(`SELECT ` + clientColumns + ` FROM clients WHERE document = ?`)
	client, err := scanClient(s.db.QueryRow(query, document))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// UpdateClient 更新客户信息。
func (s *Store) UpdateClient(client *domain.Client) error {
	query := s.rebind(`UPDATE clients
		SET kind = ?, name = ?, document = ?, email = ?, phone = ?, address = ?, active = ?, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.Exec(query,
		client.Kind, client.Name, client.Document, client.Email,
		client.Phone, client.Address, client.Active, time.Now().UTC(), client.ID)
	if err != nil {
		if isDuplicateError(err) {
			return storage.ErrDocumentExists
		}
		return err
	}
	return requireAffected(result, storage.ErrClientNotFound)
}

// DeleteClient 删除客户并级联删除其信箱、信件与合同。
func (s *Store) DeleteClient(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var mailboxID string
	err = tx.QueryRow(s.rebind(`SELECT id FROM mailboxes WHERE client_id = ?`), id).Scan(&mailboxID)
	if err == nil {
		if _, err := tx.Exec(s.rebind(`DELETE FROM correspondence_items WHERE mailbox_id = ?`), mailboxID); err != nil {
			return err
		}
		if _, err := tx.Exec(s.rebind(`DELETE FROM mailboxes WHERE id = ?`), mailboxID); err != nil {
			return err
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	if _, err := tx.Exec(s.rebind(`DELETE FROM contracts WHERE client_id = ?`), id); err != nil {
		return err
	}

	result, err := tx.Exec(s.rebind(`DELETE FROM clients WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireAffected(result, storage.ErrClientNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

// ListClients 返回按姓名升序排列的客户列表。
func (s *Store) ListClients(filter domain.ClientFilter) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	var args []interface{}

	if filter.Active != nil {
		query += ` AND active = ?`
		args = append(args, *filter.Active)
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Search != "" {
		query += ` AND (LOWER(name) LIKE ? OR LOWER(document) LIKE ? OR LOWER(email) LIKE ?)`
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	return clients, rows.Err()
}

// ========== Mailbox Repository ==========

const mailboxColumns = "id, number, client_id, notes, active, created_at"

// scanMailbox 从查询结果扫描信箱记录。
func scanMailbox(row interface{ Scan(...interface{}) error }) (*domain.Mailbox, error) {
	var m domain.Mailbox
	var notes sql.NullString
	err := row.Scan(&m.ID, &m.Number, &m.ClientID, &notes, &m.Active, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Notes = notes.String
	return &m, nil
}

// CreateMailbox 保存新信箱。
func (s *Store) CreateMailbox(mailbox *domain.Mailbox) error {
	var count int
	if err := s.db.QueryRow(s.rebind(`SELECT COUNT(*) FROM mailboxes WHERE client_id = ?`), mailbox.ClientID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return storage.ErrMailboxExists
	}

	query := s.rebind(`INSERT INTO mailboxes (` + mailboxColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query,
		mailbox.ID, mailbox.Number, mailbox.ClientID, mailbox.Notes, mailbox.Active, mailbox.CreatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return storage.ErrNumberExists
		}
		return err
	}
	return nil
}

// GetMailbox 根据 ID 获取信箱。
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	mailbox, err := scanMailbox(s.db.QueryRow(s.rebind(`SELECT `+mailboxColumns+` FROM mailboxes WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMailboxNotFound
		}
		return nil, err
	}
	return mailbox, nil
}

// GetMailboxByClientID 获取客户拥有的信箱。
func (s *Store) GetMailboxByClientID(clientID string) (*domain.Mailbox, error) {
	mailbox, err := scanMailbox(s.db.QueryRow(s.rebind(`SELECT `+mailboxColumns+` FROM mailboxes WHERE client_id = ?`), clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMailboxNotFound
		}
		return nil, err
	}
	return mailbox, nil
}

// UpdateMailbox 更新信箱信息（编号不可变更）。
func (s *Store) UpdateMailbox(mailbox *domain.Mailbox) error {
	query := s.rebind(`UPDATE mailboxes SET notes = ?, active = ? WHERE id = ?`)
	result, err := s.db.Exec(query, mailbox.Notes, mailbox.Active, mailbox.ID)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrMailboxNotFound)
}

// DeleteMailbox 删除信箱并级联删除其全部信件。
func (s *Store) DeleteMailbox(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.rebind(`DELETE FROM correspondence_items WHERE mailbox_id = ?`), id); err != nil {
		return err
	}

	result, err := tx.Exec(s.rebind(`DELETE FROM mailboxes WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireAffected(result, storage.ErrMailboxNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

// ListMailboxes 返回按编号升序排列的信箱列表。
func (s *Store) ListMailboxes(filter domain.MailboxFilter) ([]domain.Mailbox, error) {
	query := `SELECT ` + mailboxColumns + ` FROM mailboxes WHERE 1=1`
	var args []interface{}

	if filter.Active != nil {
		query += ` AND active = ?`
		args = append(args, *filter.Active)
	}
	if filter.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, filter.ClientID)
	}
	query += ` ORDER BY number ASC`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mailboxes := make([]domain.Mailbox, 0)
	for rows.Next() {
		mailbox, err := scanMailbox(rows)
		if err != nil {
			return nil, err
		}
		mailboxes = append(mailboxes, *mailbox)
	}
	return mailboxes, rows.Err()
}

// MaxMailboxNumber 返回纯数字信箱编号中的最大值，没有时返回 0。
func (s *Store) MaxMailboxNumber() (int, error) {
	rows, err := s.db.Query(`SELECT number FROM mailboxes`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, err
		}
		value := 0
		numeric := number != ""
		for _, r := range number {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
			value = value*10 + int(r-'0')
		}
		if numeric && value > max {
			max = value
		}
	}
	return max, rows.Err()
}

// ========== Correspondence Repository ==========

const correspondenceColumns = `id, mailbox_id, received_at, description, kind, status, picked_up_at,
	sender, tracking_code, notes, picked_up_by, pickup_document_id, created_at, updated_at`

// scanCorrespondence 从查询结果扫描信件记录。
func scanCorrespondence(row interface{ Scan(...interface{}) error }) (*domain.CorrespondenceItem, error) {
	var item domain.CorrespondenceItem
	var pickedUpAt sql.NullTime
	var sender, trackingCode, notes, pickedUpBy, pickupDocumentID sql.NullString
	err := row.Scan(&item.ID, &item.MailboxID, &item.ReceivedAt, &item.Description,
		&item.Kind, &item.Status, &pickedUpAt,
		&sender, &trackingCode, &notes, &pickedUpBy, &pickupDocumentID,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if pickedUpAt.Valid {
		t := pickedUpAt.Time
		item.PickedUpAt = &t
	}
	item.Sender = sender.String
	item.TrackingCode = trackingCode.String
	item.Notes = notes.String
	item.PickedUpBy = pickedUpBy.String
	item.PickupDocumentID = pickupDocumentID.String
	return &item, nil
}

// CreateCorrespondence 保存新信件。
func (s *Store) CreateCorrespondence(item *domain.CorrespondenceItem) error {
	var count int
	if err := s.db.QueryRow(s.rebind(`SELECT COUNT(*) FROM mailboxes WHERE id = ?`), item.MailboxID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrMailboxNotFound
	}

	query := s.rebind(`INSERT INTO correspondence_items (` + correspondenceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query,
		item.ID, item.MailboxID, item.ReceivedAt, item.Description,
		item.Kind, item.Status, item.PickedUpAt,
		item.Sender, item.TrackingCode, item.Notes, item.PickedUpBy, item.PickupDocumentID,
		item.CreatedAt, item.UpdatedAt)
	return err
}

// GetCorrespondence 根据 ID 获取信件。
func (s *Store) GetCorrespondence(id string) (*domain.CorrespondenceItem, error) {
	query := s.rebind(`SELECT ` + correspondenceColumns + ` FROM correspondence_items WHERE id = ?`)
	item, err := scanCorrespondence(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCorrespondenceNotFound
		}
		return nil, err
	}
	return item, nil
}

// UpdateCorrespondence 更新信件信息。
func (s *Store) UpdateCorrespondence(item *domain.CorrespondenceItem) error {
	query := s.rebind(`UPDATE correspondence_items
		SET received_at = ?, description = ?, kind = ?, status = ?, picked_up_at = ?,
			sender = ?, tracking_code = ?, notes = ?, picked_up_by = ?, pickup_document_id = ?, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.Exec(query,
		item.ReceivedAt, item.Description, item.Kind, item.Status, item.PickedUpAt,
		item.Sender, item.TrackingCode, item.Notes, item.PickedUpBy, item.PickupDocumentID,
		time.Now().UTC(), item.ID)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrCorrespondenceNotFound)
}

// DeleteCorrespondence 删除信件。
func (s *Store) DeleteCorrespondence(id string) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM correspondence_items WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrCorrespondenceNotFound)
}

// ListCorrespondence 返回按收件时间倒序排列的信件列表。
func (s *Store) ListCorrespondence(filter domain.CorrespondenceFilter) ([]domain.CorrespondenceItem, error) {
	query := `SELECT ` + correspondenceColumns + ` FROM correspondence_items WHERE 1=1`
	var args []interface{}

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
		query += ` AND mailbox_id = ?`
		args = append(args, mailbox.ID)
	} else if filter.MailboxID != "" {
		query += ` AND mailbox_id = ?`
		args = append(args, filter.MailboxID)
	}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if !filter.From.IsZero() {
		query += ` AND received_at >= ?`
		args = append(args, domain.DateOnly(filter.From))
	}
	if !filter.To.IsZero() {
		query += ` AND received_at < ?`
		args = append(args, domain.DateOnly(filter.To).AddDate(0, 0, 1))
	}
	query += ` ORDER BY received_at DESC`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.CorrespondenceItem, 0)
	for rows.Next() {
		item, err := scanCorrespondence(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ========== Contract Repository ==========

const contractColumns = "id, client_id, plan, monthly_value, start_date, duration_months, status, notes, created_at, updated_at"

// scanContract 从查询结果扫描合同记录。
func scanContract(row interface{ Scan(...interface{}) error }) (*domain.Contract, error) {
	var c domain.Contract
	var notes sql.NullString
	err := row.Scan(&c.ID, &c.ClientID, &c.Plan, &c.MonthlyValue, &c.StartDate,
		&c.DurationMonths, &c.Status, &notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Notes = notes.String
	return &c, nil
}

// CreateContract 保存新合同。
func (s *Store) CreateContract(contract *domain.Contract) error {
	var count int
	if err := s.db.QueryRow(s.rebind(`SELECT COUNT(*) FROM clients WHERE id = ?`), contract.ClientID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrClientNotFound
	}

	query := s.rebind(`INSERT INTO contracts (` + contractColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query,
		contract.ID, contract.ClientID, contract.Plan, contract.MonthlyValue, contract.StartDate,
		contract.DurationMonths, contract.Status, contract.Notes, contract.CreatedAt, contract.UpdatedAt)
	return err
}

// GetContract 根据 ID 获取合同。
func (s *Store) GetContract(id string) (*domain.Contract, error) {
	contract, err := scanContract(s.db.QueryRow(s.rebind(`SELECT `+contractColumns+` FROM contracts WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrContractNotFound
		}
		return nil, err
	}
	return contract, nil
}

// UpdateContract 更新合同信息。
func (s *Store) UpdateContract(contract *domain.Contract) error {
	query := s.rebind(`UPDATE contracts
		SET plan = ?, monthly_value = ?, start_date = ?, duration_months = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?`)
	result, err := s.db.Exec(query,
		contract.Plan, contract.MonthlyValue, contract.StartDate, contract.DurationMonths,
		contract.Status, contract.Notes, time.Now().UTC(), contract.ID)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrContractNotFound)
}

// DeleteContract 删除合同。
func (s *Store) DeleteContract(id string) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM contracts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrContractNotFound)
}

// ListContracts 返回按起始日期倒序排列的合同列表。
func (s *Store) ListContracts(filter domain.ContractFilter) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	var args []interface{}

	if filter.ClientID != "" {
		query += ` AND client_id = ?`
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Plan != "" {
		query += ` AND plan = ?`
		args = append(args, filter.Plan)
	}
	query += ` ORDER BY start_date DESC`

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]domain.Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *contract)
	}
	return contracts, rows.Err()
}

// ========== Staff Repository ==========

const staffColumns = "id, username, password_hash, name, active, last_login_at, created_at, updated_at"

// scanStaff 从查询结果扫描操作员记录。
func scanStaff(row interface{ Scan(...interface{}) error }) (*domain.StaffUser, error) {
	var u domain.StaffUser
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Active,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// CreateStaff 保存操作员账号。
func (s *Store) CreateStaff(user *domain.StaffUser) error {
	query := s.rebind(`INSERT INTO staff_users (` + staffColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.Exec(query,
		user.ID, user.Username, user.PasswordHash, user.Name, user.Active,
		user.LastLoginAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isDuplicateError(err) {
			return storage.ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetStaffByID 根据 ID 获取操作员。
func (s *Store) GetStaffByID(id string) (*domain.StaffUser, error) {
	user, err := scanStaff(s.db.QueryRow(s.rebind(`SELECT `+staffColumns+` FROM staff_users WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStaffNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetStaffByUsername 根据用户名获取操作员。
func (s *Store) GetStaffByUsername(username string) (*domain.StaffUser, error) {
	query := s.rebind(`SELECT ` + staffColumns + ` FROM staff_users WHERE LOWER(username) = ?`)
	user, err := scanStaff(s.db.QueryRow(query, strings.ToLower(username)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStaffNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateStaffLastLogin 更新操作员最后登录时间。
func (s *Store) UpdateStaffLastLogin(id string) error {
	result, err := s.db.Exec(s.rebind(`UPDATE staff_users SET last_login_at = ? WHERE id = ?`), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(result, storage.ErrStaffNotFound)
}

// ========== Dashboard Repository ==========

// DashboardSnapshot 即时统计看板数据。
func (s *Store) DashboardSnapshot() (*domain.DashboardSnapshot, error) {
	snapshot := &domain.DashboardSnapshot{
		ByKind:   make(map[domain.CorrespondenceKind]int),
		ByStatus: make(map[domain.CorrespondenceStatus]int),
	}

	today := domain.DateOnly(time.Now())
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := today.AddDate(0, 0, -7)

	count := func(dest *int, query string, args ...interface{}) error {
		return s.db.QueryRow(s.rebind(query), args...).Scan(dest)
	}

	if err := count(&snapshot.ActiveClients, `SELECT COUNT(*) FROM clients WHERE active = ?`, true); err != nil {
		return nil, err
	}
	if err := count(&snapshot.ActiveMailboxes, `SELECT COUNT(*) FROM mailboxes WHERE active = ?`, true); err != nil {
		return nil, err
	}
	if err := count(&snapshot.PendingCorrespondence, `SELECT COUNT(*) FROM correspondence_items WHERE status = ?`, domain.StatusReceived); err != nil {
		return nil, err
	}
	if err := count(&snapshot.CorrespondenceToday, `SELECT COUNT(*) FROM correspondence_items WHERE received_at >= ? AND received_at < ?`, today, tomorrow); err != nil {
		return nil, err
	}
	if err := count(&snapshot.CorrespondenceLast7d, `SELECT COUNT(*) FROM correspondence_items WHERE received_at >= ? AND received_at < ?`, weekAgo, tomorrow); err != nil {
		return nil, err
	}
	if err := count(&snapshot.ActiveContracts, `SELECT COUNT(*) FROM contracts WHERE status = ?`, domain.ContractActive); err != nil {
		return nil, err
	}
	snapshot.TotalClients = snapshot.ActiveClients

	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM correspondence_items GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind domain.CorrespondenceKind
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		snapshot.ByKind[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statusRows, err := s.db.Query(`SELECT status, COUNT(*) FROM correspondence_items GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status domain.CorrespondenceStatus
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, err
		}
		snapshot.ByStatus[status] = count
	}
	return snapshot, statusRows.Err()
}

// requireAffected 确认更新/删除确实影响了一行。
func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
