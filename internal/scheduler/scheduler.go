package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"showtix/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Task types dispatched through the scheduler
const (
	TaskTypeBookingExpiry = "booking.expiry"
	TaskTypeShowReminder  = "show.reminder"
)

const (
	dueSetKey    = "scheduler:due"
	payloadKey   = "scheduler:tasks"
	retryBackoff = time.Minute
	maxAttempts  = 5
)

// Task is a deferred unit of work keyed by a stable domain id. Tasks live in
// Redis until they fire, so they survive process restarts. Delivery is
// at-least-once: handlers must tolerate redelivery.
type Task struct {
	Type     string            `json:"type"`
	Key      string            `json:"key"`
	FireAt   time.Time         `json:"fire_at"`
	Payload  map[string]string `json:"payload,omitempty"`
	Attempts int               `json:"attempts"`
}

func (t Task) id() string {
	return t.Type + ":" + t.Key
}

// Handler processes a due task. Returning an error re-queues the task with
// backoff until maxAttempts is reached.
type Handler func(ctx context.Context, task Task) error

// Client is the scheduling surface exposed to domain services
type Client interface {
	Schedule(ctx context.Context, task Task) error
	Cancel(ctx context.Context, taskType, key string) error
}

// Lua script for atomically claiming due tasks - a claimed task is removed
// from both the due set and the payload hash in the same step, so exactly
// one worker processes each firing
const luaClaimDueTasks = `
-- KEYS[1] = due zset
-- KEYS[2] = payload hash
-- ARGV[1] = now (unix seconds)
-- ARGV[2] = batch size

local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, tonumber(ARGV[2]))
if #due == 0 then
    return {}
end

local out = {}
for i = 1, #due do
    local id = due[i]
    redis.call("ZREM", KEYS[1], id)
    local body = redis.call("HGET", KEYS[2], id)
    redis.call("HDEL", KEYS[2], id)
    if body then
        out[#out + 1] = body
    end
end

return out
`

// Scheduler is a Redis-backed deferred task runner. Pending tasks are kept in
// a sorted set scored by fire time with their bodies in a hash; a polling
// worker claims due tasks atomically and dispatches them to registered
// handlers.
type Scheduler struct {
	redis        *redis.Client
	pollInterval time.Duration
	batchSize    int

	mu       sync.RWMutex
	handlers map[string]Handler

	done chan struct{}
}

// New creates a scheduler bound to the given Redis client
func New(redisClient *redis.Client, pollInterval time.Duration) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Scheduler{
		redis:        redisClient,
		pollInterval: pollInterval,
		batchSize:    100,
		handlers:     make(map[string]Handler),
		done:         make(chan struct{}),
	}
}

// Register binds a handler to a task type. Must be called before Start.
func (s *Scheduler) Register(taskType string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[taskType] = handler
}

// Schedule persists a task. Scheduling the same type+key again replaces the
// previous entry.
func (s *Scheduler) Schedule(ctx context.Context, task Task) error {
	if task.Type == "" || task.Key == "" {
		return fmt.Errorf("task type and key are required")
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, payloadKey, task.id(), body)
	pipe.ZAdd(ctx, dueSetKey, redis.Z{
		Score:  float64(task.FireAt.Unix()),
		Member: task.id(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist task: %w", err)
	}
	return nil
}

// Cancel removes a pending task. Cancelling an unknown task is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, taskType, key string) error {
	id := Task{Type: taskType, Key: key}.id()
	pipe := s.redis.TxPipeline()
	pipe.ZRem(ctx, dueSetKey, id)
	pipe.HDel(ctx, payloadKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// PreloadScripts loads the claim script into Redis for better performance
func (s *Scheduler) PreloadScripts(ctx context.Context) error {
	if _, err := s.redis.ScriptLoad(ctx, luaClaimDueTasks).Result(); err != nil {
		return fmt.Errorf("failed to load claim script: %w", err)
	}
	return nil
}

// Start runs the polling worker until the context is cancelled or Stop is
// called
func (s *Scheduler) Start(ctx context.Context) {
	appLogger := logger.GetDefault()
	appLogger.Info(fmt.Sprintf("Started durable task scheduler with %v poll interval", s.pollInterval))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processDueTasks(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the polling worker
func (s *Scheduler) Stop() {
	close(s.done)
}

func (s *Scheduler) processDueTasks(ctx context.Context) {
	appLogger := logger.GetDefault()

	tasks, err := s.claimDue(ctx)
	if err != nil {
		appLogger.ErrorWithContext(ctx, "Failed to claim due tasks", err, nil)
		return
	}

	for _, task := range tasks {
		s.dispatch(ctx, task)
	}
}

// claimDue atomically removes and returns every task whose fire time has
// passed
func (s *Scheduler) claimDue(ctx context.Context) ([]Task, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	keys := []string{dueSetKey, payloadKey}
	args := []interface{}{now, s.batchSize}

	result, err := s.redis.EvalSha(ctx, luaClaimDueTasks, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = s.redis.Eval(ctx, luaClaimDueTasks, keys, args...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to execute claim script: %w", err)
		}
	}

	raw, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result format from claim script")
	}

	tasks := make([]Task, 0, len(raw))
	for _, item := range raw {
		body, ok := item.(string)
		if !ok {
			continue
		}
		var task Task
		if err := json.Unmarshal([]byte(body), &task); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "Dropping undecodable task", err, nil)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *Scheduler) dispatch(ctx context.Context, task Task) {
	appLogger := logger.GetDefault()

	s.mu.RLock()
	handler, ok := s.handlers[task.Type]
	s.mu.RUnlock()

	if !ok {
		appLogger.InfoWithContext(ctx, "No handler registered for task type", map[string]interface{}{
			"task_type": task.Type,
			"task_key":  task.Key,
		})
		return
	}

	if err := handler(ctx, task); err != nil {
		task.Attempts++
		if task.Attempts >= maxAttempts {
			appLogger.ErrorWithContext(ctx, "Task failed permanently", err, map[string]interface{}{
				"task_type": task.Type,
				"task_key":  task.Key,
				"attempts":  task.Attempts,
			})
			return
		}

		task.FireAt = time.Now().Add(retryBackoff)
		if scheduleErr := s.Schedule(ctx, task); scheduleErr != nil {
			appLogger.ErrorWithContext(ctx, "Failed to re-queue task", scheduleErr, map[string]interface{}{
				"task_type": task.Type,
				"task_key":  task.Key,
			})
		}
	}
}
