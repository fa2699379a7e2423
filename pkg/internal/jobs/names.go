package jobs

import "time"

// 任务名称.
const (
	JobSessionSweep = "session.sweep"
	JobHealthProbe  = "health.probe"
)

// 默认执行间隔.
const (
	SessionSweepInterval = 5 * time.Minute
	HealthProbeInterval  = 30 * time.Second
)
