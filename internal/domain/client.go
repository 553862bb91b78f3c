package domain

import (
	"time"
)

// ClientKind 客户类型（自然人 / 法人）
type ClientKind string

const (
	// KindIndividual 自然人客户（税号 11 位）
	KindIndividual ClientKind = "INDIVIDUAL"
	// KindOrganization 法人客户（税号 14 位）
	KindOrganization ClientKind = "ORGANIZATION"
)

// clientKindLabels 客户类型显示名称映射表
var clientKindLabels = map[ClientKind]string{
	KindIndividual:   "Individual",
	KindOrganization: "Organization",
}

// Valid 判断客户类型是否为合法枚举值
func (k ClientKind) Valid() bool {
	_, ok := clientKindLabels[k]
	return ok
}

// Label 返回客户类型的显示名称
func (k ClientKind) Label() string {
	if label, ok := clientKindLabels[k]; ok {
		return label
	}
	return string(k)
}

// Client 表示邮务中心的客户（个人或公司）。
type Client struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Kind      ClientKind `json:"kind" gorm:"type:varchar(15);not null"`
	Name      string     `json:"name" gorm:"type:varchar(255);not null;index"`
	Document  string     `json:"document" gorm:"type:varchar(18);uniqueIndex"` // 税号，仅含数字与标点
	Email     string     `json:"email" gorm:"type:varchar(255);not null"`
	Phone     string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Address   string     `json:"address,omitempty" gorm:"type:text"`
	Active    bool       `json:"active" gorm:"default:true;index"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FormattedDocument 返回带标点的税号显示形式
func (c *Client) FormattedDocument() string {
	return FormatDocument(c.Document, c.Kind)
}
