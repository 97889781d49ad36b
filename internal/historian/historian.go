// internal/historian/historian.go pops game action records from the Redis queue
// and persists them in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/mansion/internal/cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Store is where flushed batches and abandoned games end up.
type Store interface {
	InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error
	MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) (bool, error)
}

// Options tune the service. Zero values take the defaults.
type Options struct {
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration
	Inactivity time.Duration // duration until a game is marked abandoned
}

// Service encapsulates the Redis + DB logic for capturing game actions
// and marking games abandoned when a certain inactivity threshold is reached.
type Service struct {
	redisClient  *redis.Client
	store        Store
	opts         Options
	lastActivity sync.Map // map[uuid.UUID]time.Time
	now          func() time.Time

	batchMu sync.Mutex
	batch   []cache.GameActionRecord
}

// NewService builds a service reading from rdb and writing to store.
func NewService(rdb *redis.Client, store Store, opts Options) *Service {
	if opts.QueueName == "" {
		opts.QueueName = cache.DefaultQueueName
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = 500 * time.Millisecond
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = 10 * time.Minute
	}
	return &Service{
		redisClient: rdb,
		store:       store,
		opts:        opts,
		now:         time.Now,
		batch:       make([]cache.GameActionRecord, 0, opts.BatchSize),
	}
}

// Run starts the two main loops and blocks until ctx is cancelled:
//  1. A loop that reads from the Redis queue, accumulates records in a batch, and flushes them.
//  2. A periodic check for inactivity to mark games as abandoned.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); s.readLoop(ctx) }()
	go func() { defer wg.Done(); s.flushLoop(ctx) }()
	go func() { defer wg.Done(); s.inactivityLoop(ctx) }()

	log.WithField("queue", s.opts.QueueName).Info("mansion-historian service started")
	wg.Wait()
	s.Flush(context.Background())
	log.Info("mansion-historian shut down")
}

// readLoop continuously uses BLPop to retrieve records from the Redis queue.
func (s *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		// BLPop with a timeout so that cancellation is handled.
		res, err := s.redisClient.BLPop(ctx, 3*time.Second, s.opts.QueueName).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.WithError(err).Error("BLPop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		// res[0] is the queue name and res[1] the payload.
		if err := s.Ingest([]byte(res[1])); err != nil {
			log.WithError(err).Warn("Dropping invalid action record")
		}
	}
}

func (s *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Ingest decodes one queued record and adds it to the batch, flushing once the
// batch is full.
func (s *Service) Ingest(payload []byte) error {
	var record cache.GameActionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return fmt.Errorf("invalid action record: %w", err)
	}
	if record.GameID == uuid.Nil {
		return fmt.Errorf("action record %d has no game id", record.ActionIndex)
	}
	s.lastActivity.Store(record.GameID, s.now())
	if record.ActionType == "game_complete" {
		s.lastActivity.Delete(record.GameID)
	}

	s.batchMu.Lock()
	s.batch = append(s.batch, record)
	full := len(s.batch) >= s.opts.BatchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(context.Background())
	}
	return nil
}

// Flush writes the pending batch in a single transaction. A failed batch is
// kept and retried on the next flush.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	if len(s.batch) == 0 {
		return
	}
	batchCopy := make([]cache.GameActionRecord, len(s.batch))
	copy(batchCopy, s.batch)

	if err := s.store.InsertGameActions(ctx, batchCopy); err != nil {
		log.WithError(err).Errorf("Failed to flush %d actions", len(batchCopy))
		return
	}
	s.batch = s.batch[:0]
	log.Debugf("Flushed %d actions to DB.", len(batchCopy))
}

// Pending returns the number of records waiting for a flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func (s *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game silent for longer than the inactivity
// threshold as abandoned.
func (s *Service) SweepInactive(ctx context.Context) {
	now := s.now()
	s.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= s.opts.Inactivity {
			return true
		}
		marked, err := s.store.MarkGameAbandoned(ctx, gameID)
		if err != nil {
			log.WithError(err).WithField("game", gameID).Error("Failed to mark game abandoned")
			return true
		}
		s.lastActivity.Delete(gameID)
		if marked {
			log.WithField("game", gameID).Info("Marked game as abandoned due to inactivity")
		}
		return true
	})
}
