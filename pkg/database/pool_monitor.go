package database

import (
	"context"
	"database/sql"
	"time"

	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"

	"go.uber.org/zap"
)

// PoolStatsSource sql.DB 满足该接口
type PoolStatsSource interface {
	Stats() sql.DBStats
}

// PoolMonitor 定期把连接池状态写入 Prometheus，等待连接数突增时告警
type PoolMonitor struct {
	source         PoolStatsSource
	collector      *metrics.MetricsCollector
	interval       time.Duration
	alertThreshold int64
	lastWaitCount  int64
}

// NewPoolMonitor alertThreshold 为单个周期内新增的等待次数上限，0 表示不告警
func NewPoolMonitor(source PoolStatsSource, collector *metrics.MetricsCollector, interval time.Duration, alertThreshold int64) *PoolMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PoolMonitor{
		source:         source,
		collector:      collector,
		interval:       interval,
		alertThreshold: alertThreshold,
	}
}

// Run 阻塞直到 ctx 取消
func (pm *PoolMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.Collect()
		}
	}
}

// Collect 采集一次
func (pm *PoolMonitor) Collect() sql.DBStats {
	stats := pm.source.Stats()
	if pm.collector != nil {
		pm.collector.UpdateDBConnections(stats.InUse, stats.Idle)
	}

	waited := stats.WaitCount - pm.lastWaitCount
	pm.lastWaitCount = stats.WaitCount
	if pm.alertThreshold > 0 && waited > pm.alertThreshold {
		logger.Log.Warn("database pool saturated",
			zap.Int64("waits_in_period", waited),
			zap.Int("open", stats.OpenConnections),
			zap.Int("in_use", stats.InUse),
			zap.Duration("wait_total", stats.WaitDuration),
		)
	}
	return stats
}
