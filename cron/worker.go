package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"counselhub/config"
	"counselhub/models"
	"counselhub/services/scheduling"
	"counselhub/services/tasks"
)

// InitExpiryWorker runs the async worker consuming pending-expiry tasks in
// the background. Each task fires at an appointment's start time and
// cancels it if it was never confirmed, which frees the slot for other
// bookers.
func InitExpiryWorker(svc scheduling.SchedulingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeExpirePending, handleExpireTask(svc))

	go func() {
		log.Println("[ExpiryWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleExpireTask(svc scheduling.SchedulingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ExpirePendingPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryWorker] invalid payload: %v", err)
			return err
		}

		if err := svc.ExpirePending(ctx, p.AppointmentID); err != nil {
			log.Printf("[ExpiryWorker] failed to expire appointment %s: %v", p.AppointmentID, err)
			return err
		}
		return nil
	}
}
