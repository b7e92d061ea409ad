package ports

import "time"

// SchedulerService drives time-based work outside the deterministic core:
// the periodic settlement tick and one-shot duty-deadline sweeps.
type SchedulerService interface {
	Start()
	Stop()

	// ScheduleTick runs task at every interval until Stop.
	ScheduleTick(interval time.Duration, task func()) error
	// ScheduleTaskOnce runs task once at the given unix time.
	ScheduleTaskOnce(at int64, task func()) error
}
