package domain

import (
	"time"
)

// Mailbox 表示分配给客户的实体信箱，一个客户只能拥有一个信箱。
type Mailbox struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Number    string    `json:"number" gorm:"type:varchar(20);uniqueIndex"` // 信箱编号，创建时自动分配，之后不可变
	ClientID  string    `json:"clientId" gorm:"type:varchar(36);uniqueIndex;not null"`
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	Active    bool      `json:"active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"createdAt"`
}
