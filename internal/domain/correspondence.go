package domain

import (
	"time"
)

// CorrespondenceKind 信件类型
type CorrespondenceKind string

const (
	KindLetter         CorrespondenceKind = "LETTER"
	KindPackage        CorrespondenceKind = "PACKAGE"
	KindDeliveryNotice CorrespondenceKind = "DELIVERY_NOTICE"
	KindExpressMail    CorrespondenceKind = "EXPRESS_MAIL"
	KindStandardMail   CorrespondenceKind = "STANDARD_MAIL"
	KindParcel         CorrespondenceKind = "PARCEL"
	KindDocument       CorrespondenceKind = "DOCUMENT"
	KindOther          CorrespondenceKind = "OTHER"
)

// correspondenceKindLabels 信件类型显示名称映射表
var correspondenceKindLabels = map[CorrespondenceKind]string{
	KindLetter:         "Letter",
	KindPackage:        "Package",
	KindDeliveryNotice: "Delivery Notice",
	KindExpressMail:    "Express Mail",
	KindStandardMail:   "Standard Mail",
	KindParcel:         "Parcel",
	KindDocument:       "Document",
	KindOther:          "Other",
}

// Valid 判断信件类型是否为合法枚举值
func (k CorrespondenceKind) Valid() bool {
	_, ok := correspondenceKindLabels[k]
	return ok
}

// Label 返回信件类型的显示名称
func (k CorrespondenceKind) Label() string {
	if label, ok := correspondenceKindLabels[k]; ok {
		return label
	}
	return string(k)
}

// CorrespondenceStatus 信件状态
type CorrespondenceStatus string

const (
	// StatusReceived 已收件（初始状态）
	StatusReceived CorrespondenceStatus = "RECEIVED"
	// StatusPickedUp 已取件
	StatusPickedUp CorrespondenceStatus = "PICKED_UP"
	// StatusReturned 已退回
	StatusReturned CorrespondenceStatus = "RETURNED"
)

// correspondenceStatusLabels 信件状态显示名称映射表
var correspondenceStatusLabels = map[CorrespondenceStatus]string{
	StatusReceived: "Received",
	StatusPickedUp: "Picked Up",
	StatusReturned: "Returned",
}

// Valid 判断信件状态是否为合法枚举值
func (s CorrespondenceStatus) Valid() bool {
	_, ok := correspondenceStatusLabels[s]
	return ok
}

// Label 返回信件状态的显示名称
func (s CorrespondenceStatus) Label() string {
	if label, ok := correspondenceStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// CorrespondenceItem 表示信箱中的一件实体邮件，从收件到取件/退回全程跟踪。
type CorrespondenceItem struct {
	ID               string               `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MailboxID        string               `json:"mailboxId" gorm:"type:varchar(36);index;not null"`
	ReceivedAt       time.Time            `json:"receivedAt" gorm:"index"`
	Description      string               `json:"description" gorm:"type:text;not null"`
	Kind             CorrespondenceKind   `json:"kind" gorm:"type:varchar(20);not null;index"`
	Status           CorrespondenceStatus `json:"status" gorm:"type:varchar(15);not null;index;default:RECEIVED"`
	PickedUpAt       *time.Time           `json:"pickedUpAt,omitempty"`
	Sender           string               `json:"sender,omitempty" gorm:"type:varchar(255)"`
	TrackingCode     string               `json:"trackingCode,omitempty" gorm:"type:varchar(50)"`
	Notes            string               `json:"notes,omitempty" gorm:"type:text"`
	PickedUpBy       string               `json:"pickedUpBy,omitempty" gorm:"type:varchar(255)"`
	PickupDocumentID string               `json:"pickupDocumentId,omitempty" gorm:"type:varchar(18)"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// DaysInBox 返回信件在信箱中停留的整天数
//
// 已取件：收件时间到取件时间；其余状态：收件时间到当前时间。
func (c *CorrespondenceItem) DaysInBox() int {
	if c.Status == StatusPickedUp && c.PickedUpAt != nil {
		return int(c.PickedUpAt.Sub(c.ReceivedAt).Hours() / 24)
	}
	return int(time.Since(c.ReceivedAt).Hours() / 24)
}
