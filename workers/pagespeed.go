package workers

import (
	"context"
	"log"
	"time"

	"seo_auditor/audit"
	"seo_auditor/models"
	"seo_auditor/pagespeed"
	"seo_auditor/storage"
)

const maxFetchAttempts = 3

// PageSpeedWorker backfills performance metrics for URLs whose PageSpeed
// fetch failed during the crawl. Each URL gets a bounded number of attempts;
// after the last one its perf rules simply stay abstained.
type PageSpeedWorker struct {
	store   storage.Store
	client  *pagespeed.Client
	engine  *audit.Engine
	trigger chan struct{}
}

func NewPageSpeedWorker(store storage.Store, client *pagespeed.Client, engine *audit.Engine) *PageSpeedWorker {
	return &PageSpeedWorker{
		store:   store,
		client:  client,
		engine:  engine,
		trigger: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate batch outside the regular interval.
func (w *PageSpeedWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run processes batches on an interval until the context is cancelled.
func (w *PageSpeedWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("pagespeed worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.trigger:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *PageSpeedWorker) processBatch(ctx context.Context, batchSize int) {
	urls, err := w.store.ListURLsMissingPerformance(ctx, batchSize)
	if err != nil {
		log.Printf("pagespeed worker: query: %v", err)
		return
	}
	if len(urls) == 0 {
		return
	}

	log.Printf("pagespeed worker: processing %d urls", len(urls))

	// Crawls whose metrics changed get rescored once at the end.
	touched := make(map[int64]bool)

	for i := range urls {
		u := &urls[i]

		metrics, err := w.client.Fetch(ctx, u.URL, models.StrategyMobile)
		if err != nil {
			log.Printf("pagespeed worker: %s: %v", u.URL, err)
			if ierr := w.store.IncrementPerformanceAttempts(ctx, u.ID); ierr != nil {
				log.Printf("pagespeed worker: record attempt for url %d: %v", u.ID, ierr)
			}
			if u.PerformanceAttempts+1 >= maxFetchAttempts {
				log.Printf("pagespeed worker: url %d: giving up after %d attempts", u.ID, maxFetchAttempts)
			}
			continue
		}

		u.PerformanceScoreMobile = metrics.PerformanceScore
		u.LCP = metrics.LCP
		u.CLS = metrics.CLS
		u.TBT = metrics.TBT
		u.PerformanceAttempts++

		if err := w.store.UpdateURLPerformance(ctx, u); err != nil {
			log.Printf("pagespeed worker: save url %d: %v", u.ID, err)
			continue
		}
		touched[u.CrawlID] = true

		// Rate limit between Lighthouse runs
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
	}

	for crawlID := range touched {
		if _, err := w.engine.EvaluateAndScore(ctx, crawlID); err != nil {
			log.Printf("pagespeed worker: rescore crawl %d: %v", crawlID, err)
		}
	}
}
