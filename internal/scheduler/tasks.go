package scheduler

import (
	"encoding/json"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/internal/notification"

	"github.com/hibiken/asynq"
)

const TaskPushNotification = "notification.push"

func NewPushNotificationTask(job notification.Job) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPushNotification, data), nil
}

func ParsePushNotificationPayload(task *asynq.Task) (notification.Job, error) {
	var job notification.Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return notification.Job{}, err
	}
	return job, nil
}
