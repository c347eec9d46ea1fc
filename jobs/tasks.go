package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAppointmentReminder nudges a client ahead of a booked visit.
	TaskTypeAppointmentReminder = "appointment:reminder"
	// TaskTypeReminderSweep enqueues reminders for tomorrow's appointments.
	TaskTypeReminderSweep = "appointment:reminder-sweep"
)

// AppointmentReminderPayload identifies the appointment to remind about.
type AppointmentReminderPayload struct {
	AppointmentID int64     `json:"appointment_id"`
	StartsAt      time.Time `json:"starts_at"`
}

// NewAppointmentReminderTask constructs an Asynq task.
func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAppointmentReminder, data), nil
}

// NewReminderSweepTask constructs the nightly sweep task.
func NewReminderSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReminderSweep, nil)
}
