package request

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const changeChannelPrefix = "requests:changed:"

func changeChannel(department string) string {
	return changeChannelPrefix + department
}

// RedisNotifier publishes the per-department change signal request writes
// emit. Delivery is best effort: a missed signal costs a delayed refresh,
// never lost data, since every snapshot is re-read from the store.
type RedisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, logger ...*zap.Logger) *RedisNotifier {
	l := zap.L().Named("request.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.notifier")
	}
	return &RedisNotifier{rdb: rdb, logger: l}
}

func (n *RedisNotifier) PublishChange(ctx context.Context, department string) {
	if err := n.rdb.Publish(ctx, changeChannel(department), "changed").Err(); err != nil {
		n.logger.Error("publish change signal failed",
			zap.String("department", department),
			zap.Error(err),
		)
	}
}

// Watcher feeds subscribers the complete pending set of a department every
// time a matching request is submitted or decided. Both kinds are read in a
// single pass before each callback, including the first, so a subscriber
// never observes a partial single-kind snapshot.
type Watcher struct {
	repo   Repository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewWatcher(repo Repository, rdb *redis.Client, logger ...*zap.Logger) *Watcher {
	l := zap.L().Named("request.watcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.watcher")
	}
	return &Watcher{repo: repo, rdb: rdb, logger: l}
}

// Subscription is the cancellation handle for one department feed.
type Subscription struct {
	pubsub    *redis.PubSub
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// Close stops delivery. It blocks until any in-flight callback returns; no
// callback is started after Close returns.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		_ = s.pubsub.Close()
	})
}

func (s *Subscription) invoke(onChange func([]RequestResponse), snapshot []RequestResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	onChange(snapshot)
	return true
}

// Subscribe registers onChange for the department's pending set. The callback
// fires once with the current snapshot and then after every matching change
// until the subscription is closed or ctx is cancelled. Callbacks run on the
// watcher goroutine; slow consumers delay their own feed only.
func (w *Watcher) Subscribe(ctx context.Context, department string, onChange func([]RequestResponse)) (*Subscription, error) {
	pubsub := w.rdb.Subscribe(ctx, changeChannel(department))

	// Force the subscription onto the wire before the initial snapshot so a
	// write that lands in between is not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &Subscription{pubsub: pubsub}
	go w.run(ctx, department, sub, onChange)
	return sub, nil
}

func (w *Watcher) run(ctx context.Context, department string, sub *Subscription, onChange func([]RequestResponse)) {
	deliver := func() bool {
		snapshot, err := w.pendingSnapshot(ctx, department)
		if err != nil {
			w.logger.Error("department snapshot failed",
				zap.String("department", department),
				zap.Error(err),
			)
			return true // keep the subscription alive, retry on next signal
		}
		return sub.invoke(onChange, snapshot)
	}

	if !deliver() {
		return
	}

	ch := sub.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			sub.Close()
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if !deliver() {
				return
			}
		}
	}
}

func (w *Watcher) pendingSnapshot(ctx context.Context, department string) ([]RequestResponse, error) {
	leaves, err := w.repo.FindLeaveByDepartment(ctx, department, StatusPending)
	if err != nil {
		return nil, err
	}
	overtimes, err := w.repo.FindOvertimeByDepartment(ctx, department, StatusPending)
	if err != nil {
		return nil, err
	}
	return mergeBySubmission(leaves, overtimes), nil
}
