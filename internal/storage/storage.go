package storage

import (
	"errors"

	"mailhub/backend/internal/domain"
)

// 各存储后端共用的业务错误定义
var (
	// ErrClientNotFound 客户不存在
	ErrClientNotFound = errors.New("client not found")
	// ErrMailboxNotFound 信箱不存在
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrCorrespondenceNotFound 信件不存在
	ErrCorrespondenceNotFound = errors.New("correspondence item not found")
	// ErrContractNotFound 合同不存在
	ErrContractNotFound = errors.New("contract not found")
	// ErrStaffNotFound 操作员账号不存在
	ErrStaffNotFound = errors.New("staff user not found")
	// ErrDocumentExists 税号已被其他客户占用
	ErrDocumentExists = errors.New("document already registered")
	// ErrMailboxExists 客户已拥有信箱
	ErrMailboxExists = errors.New("client already has a mailbox")
	// ErrNumberExists 信箱编号已被占用
	ErrNumberExists = errors.New("mailbox number already taken")
	// ErrUsernameExists 操作员用户名已存在
	ErrUsernameExists = errors.New("username already exists")
)

// ClientRepository 定义客户数据存取操作。
type ClientRepository interface {
	CreateClient(client *domain.Client) error
	GetClient(id string) (*domain.Client, error)
	GetClientByDocument(document string) (*domain.Client, error)
	UpdateClient(client *domain.Client) error
	// DeleteClient 删除客户并级联删除其信箱、信件与合同
	DeleteClient(id string) error
	ListClients(filter domain.ClientFilter) ([]domain.Client, error)
}

// MailboxRepository 定义信箱数据存取操作。
type MailboxRepository interface {
	CreateMailbox(mailbox *domain.Mailbox) error
	GetMailbox(id string) (*domain.Mailbox, error)
	GetMailboxByClientID(clientID string) (*domain.Mailbox, error)
	UpdateMailbox(mailbox *domain.Mailbox) error
	// DeleteMailbox 删除信箱并级联删除其全部信件
	DeleteMailbox(id string) error
	ListMailboxes(filter domain.MailboxFilter) ([]domain.Mailbox, error)
	// MaxMailboxNumber 返回纯数字信箱编号中的最大值，没有时返回 0
	MaxMailboxNumber() (int, error)
}

// CorrespondenceRepository 定义信件数据存取操作。
type CorrespondenceRepository interface {
	CreateCorrespondence(item *domain.CorrespondenceItem) error
	GetCorrespondence(id string) (*domain.CorrespondenceItem, error)
	UpdateCorrespondence(item *domain.CorrespondenceItem) error
	DeleteCorrespondence(id string) error
	ListCorrespondence(filter domain.CorrespondenceFilter) ([]domain.CorrespondenceItem, error)
}

// ContractRepository 定义合同数据存取操作。
type ContractRepository interface {
	CreateContract(contract *domain.Contract) error
	GetContract(id string) (*domain.Contract, error)
	UpdateContract(contract *domain.Contract) error
	DeleteContract(id string) error
	ListContracts(filter domain.ContractFilter) ([]domain.Contract, error)
}

// StaffRepository 定义操作员账号存取操作。
type StaffRepository interface {
	CreateStaff(user *domain.StaffUser) error
	GetStaffByID(id string) (*domain.StaffUser, error)
	GetStaffByUsername(username string) (*domain.StaffUser, error)
	UpdateStaffLastLogin(id string) error
}

// DashboardRepository 定义看板统计查询。
type DashboardRepository interface {
	// DashboardSnapshot 即时统计全量数据，不做缓存
	DashboardSnapshot() (*domain.DashboardSnapshot, error)
}

// Store 聚合所有存储接口。
type Store interface {
	ClientRepository
	MailboxRepository
	CorrespondenceRepository
	ContractRepository
	StaffRepository
	DashboardRepository

	// Health 检查底层存储连接状态
	Health() error
}
