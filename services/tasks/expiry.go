package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"counselhub/models"
)

const TypeExpirePending = "appointment:expire_pending"

// NewExpirePendingTask builds the sweep task that fires at the
// appointment's start time. If the appointment is still pending when the
// task runs, it gets auto-cancelled and the slot becomes free again.
func NewExpirePendingTask(appointmentID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.ExpirePendingPayload{AppointmentID: appointmentID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeExpirePending, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
