package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	reminderQueue = "reminders"
	deadQueue     = "reminders:dead"
	maxTries      = 3
)

// ReminderJob asks for a notification about a task whose deadline is due.
type ReminderJob struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Due       time.Time `json:"due"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler func(ctx context.Context, job *ReminderJob) error

// Queue enqueues reminder jobs onto a redis list.
type Queue struct {
	client *redis.Client
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Schedule satisfies services.ReminderScheduler.
func (q *Queue) Schedule(ctx context.Context, taskID, userID string, due time.Time) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}

	job := &ReminderJob{
		ID:        id.String(),
		TaskID:    taskID,
		UserID:    userID,
		Due:       due,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return q.client.RPush(ctx, reminderQueue, data).Err()
}

func (q *Queue) Size(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return q.client.LLen(ctx, reminderQueue).Result()
}

// Worker drains the reminder queue. Jobs not yet due go back on the queue;
// due jobs are handed to the handler, with a bounded number of retries before
// they land on the dead queue.
type Worker struct {
	client  *redis.Client
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWorker(client *redis.Client, handler Handler) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client:  client,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (w *Worker) Start(concurrency int) {
	log.Printf("Starting reminder worker with %d goroutines", concurrency)

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

func (w *Worker) Stop() {
	log.Println("Stopping reminder worker...")
	w.cancel()
	w.wg.Wait()
	log.Println("Reminder worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.processNext(); err != nil {
				log.Printf("Error processing reminder: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNext() error {
	result, err := w.client.BLPop(w.ctx, 5*time.Second, reminderQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to pop reminder: %w", err)
	}

	if len(result) < 2 {
		return fmt.Errorf("invalid reminder result")
	}

	var job ReminderJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("failed to unmarshal reminder: %w", err)
	}

	if time.Now().Before(job.Due) {
		return w.requeue(&job)
	}

	return w.execute(&job)
}

func (w *Worker) execute(job *ReminderJob) error {
	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	err := w.handler(ctx, job)
	if err != nil {
		job.Attempts++
		if job.Attempts < maxTries {
			log.Printf("Reminder %s failed (attempt %d/%d), retrying: %v",
				job.ID, job.Attempts, maxTries, err)
			return w.requeue(job)
		}

		log.Printf("Reminder %s failed permanently after %d attempts: %v",
			job.ID, job.Attempts, err)
		return w.moveToDeadQueue(job, err)
	}

	return nil
}

func (w *Worker) requeue(job *ReminderJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}

	return w.client.RPush(w.ctx, reminderQueue, data).Err()
}

func (w *Worker) moveToDeadQueue(job *ReminderJob, jobErr error) error {
	dead := map[string]interface{}{
		"job":       job,
		"error":     jobErr.Error(),
		"failed_at": time.Now().UTC(),
	}

	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead reminder: %w", err)
	}

	return w.client.RPush(w.ctx, deadQueue, data).Err()
}

// LogReminder is the reference handler; production deployments register an
// actual notifier.
func LogReminder(ctx context.Context, job *ReminderJob) error {
	log.Printf("Task %s for user %s is due at %s", job.TaskID, job.UserID, job.Due.Format(time.RFC3339))
	return nil
}
