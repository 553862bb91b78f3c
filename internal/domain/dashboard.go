package domain

// DashboardSnapshot 运营看板统计快照
//
// 每次调用即时计算，不做缓存；TotalClients 与 ActiveClients
// 的口径与历史看板一致（均为活跃客户数）。
type DashboardSnapshot struct {
	TotalClients          int                          `json:"totalClients"`
	ActiveClients         int                          `json:"activeClients"`
	ActiveMailboxes       int                          `json:"activeMailboxes"`
	PendingCorrespondence int                          `json:"pendingCorrespondence"` // 状态为已收件的信件数
	CorrespondenceToday   int                          `json:"correspondenceToday"`
	CorrespondenceLast7d  int                          `json:"correspondenceLast7Days"`
	ActiveContracts       int                          `json:"activeContracts"`
	ByKind                map[CorrespondenceKind]int   `json:"byKind"`
	ByStatus              map[CorrespondenceStatus]int `json:"byStatus"`
}
