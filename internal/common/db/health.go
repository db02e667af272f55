package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Health 数据库可达性检查。
// 导入任务启动时先 Ping 一次：库不可达属于整轮致命错误。
type Health struct {
	db *gorm.DB
}

func NewHealth(db *gorm.DB) *Health {
	return &Health{db: db}
}

func (h *Health) Ping(ctx context.Context) error {
	if h == nil || h.db == nil {
		return fmt.Errorf("health db is nil")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}
