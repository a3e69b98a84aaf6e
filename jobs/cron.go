package jobs

import (
	"context"
	"time"

	"synca/services/logger"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 5 * time.Minute

// StatusSweeper cập nhật trạng thái booking theo ngày hiện tại
type StatusSweeper interface {
	SweepStatuses(ctx context.Context) (int, error)
}

// InitCronJobs đăng ký job quét trạng thái booking rồi khởi động cron.
// spec rỗng tắt job quét.
func InitCronJobs(c *cron.Cron, spec string, sweeper StatusSweeper, log logger.Logger) error {
	if spec == "" {
		log.Info("Status sweep disabled")
		return nil
	}

	_, err := c.AddFunc(spec, func() {
		RunStatusSweep(context.Background(), sweeper, log)
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info("Cron jobs initialized with status sweep %q", spec)
	return nil
}

// RunStatusSweep chạy một lượt quét, lỗi chỉ ghi log
func RunStatusSweep(ctx context.Context, sweeper StatusSweeper, log logger.Logger) int {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	start := time.Now()
	changed, err := sweeper.SweepStatuses(ctx)
	if err != nil {
		log.Error("Status sweep failed: %v", err)
		return changed
	}
	log.Info("Status sweep updated %d bookings in %v", changed, time.Since(start))
	return changed
}
