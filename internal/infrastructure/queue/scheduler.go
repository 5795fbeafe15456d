package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"portfolio-cms/internal/domains/content/model"
	types "portfolio-cms/internal/shared"
	"portfolio-cms/pkg/logger"
)

// orphanSweepCron runs the bucket-vs-database sweep daily at 03:00 UTC,
// outside the editing hours the console sees.
const orphanSweepCron = "0 3 * * *"

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs wires every cron entry. Currently just the orphan sweep.
func (s *Scheduler) RegisterJobs() error {
	payload, err := json.Marshal(model.OrphanSweepPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(types.TypeOrphanSweep, payload)

	_, err = s.scheduler.Register(
		orphanSweepCron,
		task,
		asynq.Queue(types.QueueSweep),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register orphan sweep job", err, nil)
		return err
	}

	logger.Info("registered orphan sweep: daily at 03:00 UTC", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
