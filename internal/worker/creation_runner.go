package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookads/internal/config"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/pkg/distlock"
	"github.com/ignite/bookads/internal/service/campaign"
)

// =============================================================================
// CAMPAIGN CREATION RUNNER
// =============================================================================
// Polls ads_creation_jobs for queued jobs and runs the matching creation
// strategy. Claiming uses FOR UPDATE SKIP LOCKED so multiple runners can
// share a queue; a per-(book, purpose) distributed lock covers the window
// between precheck and creation across concurrent invocations.

// Platform is the advertising platform surface the strategies need.
type Platform interface {
	campaign.EntityCreator
	campaign.BatchService
	campaign.BidRecommender
	campaign.TargetSyncer
}

// journalGrace is how long an unsettled journal entry may sit before the
// reconcile loop reports it.
const journalGrace = 30 * time.Minute

// CreationJob is one row claimed from ads_creation_jobs.
type CreationJob struct {
	ID       string
	BookID   string
	Purpose  domain.Purpose
	Keywords []string
	ASINs    []string
	Bid      float64
}

// CreationRunner is the background worker driving campaign creation.
type CreationRunner struct {
	db       *sql.DB
	redis    *redis.Client // optional; nil falls back to PG advisory locks
	repo     campaign.Repository
	platform Platform
	cfg      *config.Config

	workerID     string
	pollInterval time.Duration
	lockTTL      time.Duration

	// newStrategy is swappable for tests.
	newStrategy func(domain.Purpose, campaign.Deps, campaign.Params) (campaign.Strategy, error)

	// Stats
	jobsDone   int64
	jobsFailed int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewCreationRunner creates the runner.
func NewCreationRunner(db *sql.DB, redisClient *redis.Client, repo campaign.Repository, platform Platform, cfg *config.Config) *CreationRunner {
	hostname, _ := os.Hostname()
	return &CreationRunner{
		db:           db,
		redis:        redisClient,
		repo:         repo,
		platform:     platform,
		cfg:          cfg,
		workerID:     fmt.Sprintf("creation-%s-%d", hostname, time.Now().UnixNano()%10000),
		pollInterval: cfg.Worker.PollInterval(),
		lockTTL:      cfg.Worker.LockTTL(),
		newStrategy:  campaign.New,
	}
}

// Start begins the polling and reconcile loops.
func (r *CreationRunner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("runner already running")
	}
	r.running = true
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.mu.Unlock()

	log.Printf("[CreationRunner] Starting (worker_id=%s, poll=%v)", r.workerID, r.pollInterval)

	r.wg.Add(1)
	go r.runLoop()

	r.wg.Add(1)
	go r.reconcileLoop()

	return nil
}

// Stop gracefully stops the runner.
func (r *CreationRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	log.Printf("[CreationRunner] Stopping...")
	r.cancel()
	r.wg.Wait()
	log.Printf("[CreationRunner] Stopped. Done: %d, failed: %d",
		atomic.LoadInt64(&r.jobsDone), atomic.LoadInt64(&r.jobsFailed))
}

// Stats returns processing counters.
func (r *CreationRunner) Stats() map[string]int64 {
	return map[string]int64{
		"jobs_done":   atomic.LoadInt64(&r.jobsDone),
		"jobs_failed": atomic.LoadInt64(&r.jobsFailed),
	}
}

func (r *CreationRunner) runLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.drainQueue()
		}
	}
}

// drainQueue claims and runs jobs until the queue is empty.
func (r *CreationRunner) drainQueue() {
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		job, err := r.claimNext()
		if err != nil {
			log.Printf("[CreationRunner] Error claiming job: %v", err)
			return
		}
		if job == nil {
			return
		}
		r.runJob(job)
	}
}

// claimNext claims the oldest queued job, or returns nil when the queue is
// empty.
func (r *CreationRunner) claimNext() (*CreationJob, error) {
	ctx, cancel := context.WithTimeout(r.ctx, 10*time.Second)
	defer cancel()

	job := &CreationJob{}
	var keywords, asins pq.StringArray
	err := r.db.QueryRowContext(ctx, `
		UPDATE ads_creation_jobs
		SET status = 'running', worker_id = $1, started_at = NOW()
		WHERE id = (
			SELECT id FROM ads_creation_jobs
			WHERE status = 'queued'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, book_id, purpose, keywords, asins, COALESCE(bid, 0)
	`, r.workerID).Scan(&job.ID, &job.BookID, &job.Purpose, &keywords, &asins, &job.Bid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	job.Keywords = keywords
	job.ASINs = asins
	return job, nil
}

// runJob executes one claimed job under the per-(book, purpose) lock.
func (r *CreationRunner) runJob(job *CreationJob) {
	ctx, cancel := context.WithTimeout(r.ctx, 10*time.Minute)
	defer cancel()

	lock := distlock.NewLock(r.redis, r.db, fmt.Sprintf("adscreate:%s:%s", job.BookID, job.Purpose), r.lockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		log.Printf("[CreationRunner] Job %s: lock busy for book %s, requeueing", job.ID, job.BookID)
		r.requeue(ctx, job.ID)
		return
	}
	defer lock.Release(ctx)

	book, err := r.loadBook(ctx, job.BookID)
	if err != nil {
		r.markFailed(ctx, job.ID, err)
		return
	}

	deps := campaign.Deps{
		Repo:        r.repo,
		Creator:     r.platform,
		Batch:       r.platform,
		Recommender: r.platform,
		Syncer:      r.platform,
		Cache:       r.redis,
		Bidding:     r.cfg.Bidding,
		Purposes:    r.cfg.Purposes,
		Marketplace: r.cfg.Ads.Marketplace,
		SyncWait:    r.cfg.Worker.SyncWait(),
		SyncPoll:    r.cfg.Worker.SyncPoll(),
	}
	params := campaign.Params{Book: book, Keywords: job.Keywords, ASINs: job.ASINs, Bid: job.Bid}

	strat, err := r.newStrategy(job.Purpose, deps, params)
	if err != nil {
		r.markFailed(ctx, job.ID, err)
		return
	}

	created, err := strat.Create(ctx)
	if err != nil {
		log.Printf("[CreationRunner] Job %s failed after %d campaigns: %v", job.ID, len(created), err)
		r.markFailed(ctx, job.ID, err)
		return
	}
	r.markDone(ctx, job.ID, len(created))
	log.Printf("[CreationRunner] Job %s done: %d campaigns for %s/%s", job.ID, len(created), book.ASIN, job.Purpose)
}

func (r *CreationRunner) loadBook(ctx context.Context, id string) (*domain.Book, error) {
	b := &domain.Book{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile_id, asin, title, format, COALESCE(marketplace,''),
		       price, break_even_acos, created_at, updated_at
		FROM ads_books
		WHERE id = $1
	`, id).Scan(
		&b.ID, &b.ProfileID, &b.ASIN, &b.Title, &b.Format, &b.Marketplace,
		&b.Price, &b.BreakEvenACOS, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("book %s: %w", id, campaign.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", id, err)
	}
	return b, nil
}

func (r *CreationRunner) requeue(ctx context.Context, jobID string) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ads_creation_jobs
		SET status = 'queued', worker_id = NULL, started_at = NULL
		WHERE id = $1
	`, jobID)
	if err != nil {
		log.Printf("[CreationRunner] Error requeueing job %s: %v", jobID, err)
	}
}

func (r *CreationRunner) markDone(ctx context.Context, jobID string, createdCount int) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ads_creation_jobs
		SET status = 'done', created_count = $2, finished_at = NOW()
		WHERE id = $1
	`, jobID, createdCount)
	if err != nil {
		log.Printf("[CreationRunner] Error marking job %s done: %v", jobID, err)
		return
	}
	atomic.AddInt64(&r.jobsDone, 1)
}

func (r *CreationRunner) markFailed(ctx context.Context, jobID string, cause error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ads_creation_jobs
		SET status = 'failed', error = $2, finished_at = NOW()
		WHERE id = $1
	`, jobID, cause.Error())
	if err != nil {
		log.Printf("[CreationRunner] Error marking job %s failed: %v", jobID, err)
		return
	}
	atomic.AddInt64(&r.jobsFailed, 1)
}

// reconcileLoop reports journal entries stuck in external_created: entities
// the platform accepted but whose local write never settled.
func (r *CreationRunner) reconcileLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.reportStaleJournal()
		}
	}
}

func (r *CreationRunner) reportStaleJournal() {
	ctx, cancel := context.WithTimeout(r.ctx, 30*time.Second)
	defer cancel()

	entries, err := r.repo.StaleJournal(ctx, time.Now().Add(-journalGrace))
	if err != nil {
		log.Printf("[CreationRunner] Error loading stale journal: %v", err)
		return
	}
	for _, e := range entries {
		log.Printf("[CreationRunner] Unsettled %s %s (external_id=%d, book=%s, purpose=%s, age=%v)",
			e.EntityKind, e.LocalID, e.ExternalID, e.BookID, e.Purpose, time.Since(e.CreatedAt).Round(time.Second))
	}
}
