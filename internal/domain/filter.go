package domain

import (
	"time"
)

// ClientFilter 客户列表过滤条件（各条件取 AND）
type ClientFilter struct {
	Active *bool      // 为 nil 时不过滤
	Kind   ClientKind // 为空时不过滤
	Search string     // 对姓名/税号/邮箱做大小写不敏感的子串匹配（OR）
}

// MailboxFilter 信箱列表过滤条件
type MailboxFilter struct {
	Active   *bool
	ClientID string
}

// CorrespondenceFilter 信件列表过滤条件
//
// From/To 为日历日期范围（含端点），零值表示不限制。
type CorrespondenceFilter struct {
	ClientID  string
	MailboxID string
	Status    CorrespondenceStatus
	Kind      CorrespondenceKind
	From      time.Time
	To        time.Time
}

// ContractFilter 合同列表过滤条件
type ContractFilter struct {
	ClientID string
	Status   ContractStatus
	Plan     ContractPlan
}
