package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"seo_auditor/config"
	"seo_auditor/models"
	"seo_auditor/storage"
)

// Engine runs rule evaluation and health scoring over stored crawls.
type Engine struct {
	store  storage.Store
	policy *config.Policy

	mu    sync.Mutex
	locks map[int64]*crawlLock
}

// crawlLock is refcounted so the lock table only holds in-flight crawls
// instead of growing by one entry per crawl id for the life of the daemon.
type crawlLock struct {
	mu   sync.Mutex
	refs int
}

func NewEngine(store storage.Store, policy *config.Policy) *Engine {
	return &Engine{
		store:  store,
		policy: policy,
		locks:  make(map[int64]*crawlLock),
	}
}

// acquire serializes work per crawl id. Independent crawls run in parallel;
// two evaluations of the same crawl must not interleave their
// replace-and-score steps.
func (e *Engine) acquire(crawlID int64) *crawlLock {
	e.mu.Lock()
	l, ok := e.locks[crawlID]
	if !ok {
		l = &crawlLock{}
		e.locks[crawlID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return l
}

func (e *Engine) release(crawlID int64, l *crawlLock) {
	l.mu.Unlock()

	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, crawlID)
	}
	e.mu.Unlock()
}

// EvaluateAndScore re-runs every enabled rule over the crawl's stored URLs,
// atomically replaces the crawl's issue set, and persists the resulting site
// health. Safe to call repeatedly: unchanged input produces an identical
// issue set and score.
func (e *Engine) EvaluateAndScore(ctx context.Context, crawlID int64) (float64, error) {
	l := e.acquire(crawlID)
	defer e.release(crawlID, l)

	crawl, err := e.store.GetCrawl(ctx, crawlID)
	if err != nil {
		return 0, fmt.Errorf("get crawl %d: %w", crawlID, err)
	}
	if crawl == nil {
		return 0, fmt.Errorf("crawl %d not found", crawlID)
	}

	types, err := e.store.ListIssueTypes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list issue types: %w", err)
	}
	typeByCode := make(map[string]models.IssueType, len(types))
	typeByID := make(map[int64]models.IssueType, len(types))
	for _, it := range types {
		typeByCode[it.Code] = it
		typeByID[it.ID] = it
	}

	urls, err := e.store.ListURLs(ctx, crawlID)
	if err != nil {
		return 0, fmt.Errorf("list urls: %w", err)
	}

	signals := make([]PageSignals, 0, len(urls))
	for i := range urls {
		signals = append(signals, ExtractSignals(&urls[i]))
	}

	findings := Evaluate(signals, e.policy)

	now := time.Now()
	issues := make([]*models.Issue, 0, len(findings))
	for _, f := range findings {
		it, ok := typeByCode[f.Code]
		if !ok {
			log.Printf("engine: crawl %d: no catalog entry for %s, skipping", crawlID, f.Code)
			continue
		}
		issues = append(issues, &models.Issue{
			CrawlID:     crawlID,
			URLID:       f.URLID,
			IssueTypeID: it.ID,
			Status:      models.IssueStatusPending,
			Details:     f.Details,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := e.store.ReplaceIssues(ctx, crawlID, issues); err != nil {
		return 0, fmt.Errorf("replace issues: %w", err)
	}

	stored := make([]models.Issue, len(issues))
	for i, issue := range issues {
		stored[i] = *issue
	}
	health := SiteHealth(stored, typeByID, e.policy.Weights)

	crawl.SiteHealth = health
	if err := e.store.UpdateCrawl(ctx, crawl); err != nil {
		return 0, fmt.Errorf("update crawl: %w", err)
	}

	log.Printf("engine: crawl %d: %d urls, %d issues, health %.1f", crawlID, len(urls), len(issues), health)
	return health, nil
}

// RecomputeHealth rescores a crawl from its stored issues without
// re-evaluating rules. Used after issue workflow updates, where the issue
// set is authoritative and only the open/resolved split changed.
func (e *Engine) RecomputeHealth(ctx context.Context, crawlID int64) (float64, error) {
	l := e.acquire(crawlID)
	defer e.release(crawlID, l)

	crawl, err := e.store.GetCrawl(ctx, crawlID)
	if err != nil {
		return 0, fmt.Errorf("get crawl %d: %w", crawlID, err)
	}
	if crawl == nil {
		return 0, fmt.Errorf("crawl %d not found", crawlID)
	}

	types, err := e.store.ListIssueTypes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list issue types: %w", err)
	}
	typeByID := make(map[int64]models.IssueType, len(types))
	for _, it := range types {
		typeByID[it.ID] = it
	}

	issues, err := e.store.ListIssues(ctx, crawlID)
	if err != nil {
		return 0, fmt.Errorf("list issues: %w", err)
	}

	health := SiteHealth(issues, typeByID, e.policy.Weights)
	crawl.SiteHealth = health
	if err := e.store.UpdateCrawl(ctx, crawl); err != nil {
		return 0, fmt.Errorf("update crawl: %w", err)
	}

	return health, nil
}
