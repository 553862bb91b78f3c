package service

import (
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

// DashboardService 提供运营看板的即时统计数据。
type DashboardService struct {
	store storage.Store
}

// NewDashboardService 创建看板业务服务。
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Snapshot 返回当前时刻的运营统计快照。
func (s *DashboardService) Snapshot() (*domain.DashboardSnapshot, error) {
	return s.store.DashboardSnapshot()
}
