package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailhub/backend/internal/service"
)

// DashboardHandler 处理运营看板与报表的 HTTP 请求
type DashboardHandler struct {
	dashboard      *service.DashboardService
	correspondence *service.CorrespondenceService
	log            *zap.Logger
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(dashboard *service.DashboardService, correspondence *service.CorrespondenceService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard:      dashboard,
		correspondence: correspondence,
		log:            log,
	}
}

// Snapshot 获取运营统计快照
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.dashboard.Snapshot()
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, snapshot)
}

// CorrespondenceReport 信件流水报表
//
// 支持与信件列表相同的过滤参数，额外返回停留天数等报表字段。
func (h *DashboardHandler) CorrespondenceReport(c *gin.Context) {
	filter, ok := parseCorrespondenceFilter(c)
	if !ok {
		return
	}

	items, err := h.correspondence.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	report := newCorrespondenceList(items)

	totalDays := 0
	for _, item := range report {
		totalDays += item.DaysInBox
	}
	averageDays := 0.0
	if len(report) > 0 {
		averageDays = float64(totalDays) / float64(len(report))
	}

	Success(c, gin.H{
		"items":         report,
		"count":         len(report),
		"averageDays":   averageDays,
		"generatedFrom": filter.From,
		"generatedTo":   filter.To,
	})
}
