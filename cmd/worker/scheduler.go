package main

import (
	"log"

	"portfolio-cms/internal/infrastructure/queue"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(redisAddr string) *asynqScheduler {
	scheduler := queue.NewScheduler(redisAddr)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] Stopped")
}
