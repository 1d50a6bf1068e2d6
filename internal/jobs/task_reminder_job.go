package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"go.uber.org/zap"
)

// TaskReminderJob notifies assignees about open tasks due within the
// reminder window
type TaskReminderJob struct {
	taskRepo         *repository.TaskRepository
	notificationRepo *repository.NotificationRepository
	hub              *realtime.Hub
	window           time.Duration
	logger           *zap.Logger
}

func NewTaskReminderJob(
	taskRepo *repository.TaskRepository,
	notificationRepo *repository.NotificationRepository,
	hub *realtime.Hub,
	logger *zap.Logger,
) *TaskReminderJob {
	return &TaskReminderJob{
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		window:           24 * time.Hour,
		logger:           logger,
	}
}

// Run finds tasks due within the window and writes one notification
// per assigned task. Tasks without an assignee are skipped.
func (j *TaskReminderJob) Run(ctx context.Context) error {
	now := time.Now()
	tasks, err := j.taskRepo.ListDueBetween(ctx, now, now.Add(j.window))
	if err != nil {
		return fmt.Errorf("failed to list due tasks: %w", err)
	}

	notified := 0
	for i := range tasks {
		task := &tasks[i]
		if task.AssigneeID == nil {
			continue
		}

		taskID := task.ID
		notification := &domain.Notification{
			UserID:     *task.AssigneeID,
			Type:       domain.NotificationTypeWarning,
			Title:      "Task due soon",
			Message:    fmt.Sprintf("%q is due %s", task.Title, task.DueDate.Format("2006-01-02 15:04")),
			EntityID:   &taskID,
			EntityType: "task",
		}
		if err := j.notificationRepo.Create(ctx, notification); err != nil {
			j.logger.Warn("failed to create task reminder",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
			continue
		}
		notified++

		j.hub.Publish(realtime.Event{Table: "notifications", Op: realtime.OpInsert, After: notification})
	}

	j.logger.Info("task reminders sent",
		zap.Int("due_tasks", len(tasks)),
		zap.Int("notified", notified))

	return nil
}
