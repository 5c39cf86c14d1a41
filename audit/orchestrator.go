package audit

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"seo_auditor/dataforseo"
	"seo_auditor/export"
	"seo_auditor/models"
	"seo_auditor/pagespeed"
	"seo_auditor/storage"
)

// Orchestrator runs the full audit pipeline for one project: crawl,
// persist, measure, evaluate, score, export.
type Orchestrator struct {
	store       storage.Store
	crawler     *dataforseo.Client
	perf        *pagespeed.Client
	engine      *Engine
	exporter    *export.Exporter
	concurrency int
}

// NewOrchestrator wires the pipeline. crawler is required for Run; perf and
// exporter are optional stages that are skipped when nil.
func NewOrchestrator(store storage.Store, crawler *dataforseo.Client, perf *pagespeed.Client, engine *Engine, exporter *export.Exporter, concurrency int) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		store:       store,
		crawler:     crawler,
		perf:        perf,
		engine:      engine,
		exporter:    exporter,
		concurrency: concurrency,
	}
}

// Run executes one audit for the project and returns the finished crawl.
// Any stage error marks the crawl failed; URL rows persisted before the
// failure are kept, and the crawl status, not the score, carries the outcome.
func (o *Orchestrator) Run(ctx context.Context, projectID int64) (*models.Crawl, error) {
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", projectID, err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %d not found", projectID)
	}
	if o.crawler == nil {
		return nil, fmt.Errorf("crawl source not configured")
	}

	crawl := &models.Crawl{
		ProjectID: project.ID,
		StartedAt: time.Now(),
		Status:    models.CrawlStatusRunning,
	}
	if err := o.store.CreateCrawl(ctx, crawl); err != nil {
		return nil, fmt.Errorf("create crawl: %w", err)
	}

	log.Printf("audit: project %d (%s): crawl %d started", project.ID, project.Domain, crawl.ID)

	runErr := o.runStages(ctx, project, crawl)

	now := time.Now()
	crawl.FinishedAt = &now
	if runErr != nil {
		crawl.Status = models.CrawlStatusFailed
		log.Printf("audit: crawl %d failed: %v", crawl.ID, runErr)
	} else {
		crawl.Status = models.CrawlStatusFinished
	}

	// Finalize with a fresh context so a cancelled run still records its
	// terminal status.
	if err := o.store.UpdateCrawl(context.Background(), crawl); err != nil {
		return crawl, fmt.Errorf("finalize crawl %d: %w", crawl.ID, err)
	}

	if runErr != nil {
		return crawl, runErr
	}

	o.exportReport(ctx, project, crawl)

	log.Printf("audit: crawl %d finished, health %.1f", crawl.ID, crawl.SiteHealth)
	return crawl, nil
}

func (o *Orchestrator) runStages(ctx context.Context, project *models.Project, crawl *models.Crawl) error {
	taskID, err := o.crawler.CreateTask(ctx, project.Domain)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	crawl.TaskID = &taskID
	if err := o.store.UpdateCrawl(ctx, crawl); err != nil {
		return fmt.Errorf("save task id: %w", err)
	}

	pages, err := o.crawler.WaitForResults(ctx, taskID)
	if err != nil {
		return fmt.Errorf("wait for results: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("crawl returned no pages")
	}

	urls := buildURLRows(crawl.ID, pages)
	if err := o.store.InsertURLs(ctx, urls); err != nil {
		return fmt.Errorf("insert urls: %w", err)
	}
	log.Printf("audit: crawl %d: stored %d urls", crawl.ID, len(urls))

	if o.perf != nil {
		o.fetchPerformance(ctx, urls)
	}

	health, err := o.engine.EvaluateAndScore(ctx, crawl.ID)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	crawl.SiteHealth = health

	return nil
}

// buildURLRows maps crawler pages onto URL rows, deriving lengths and link
// counts. Link counts are only set when every 200 page carried raw HTML;
// a partial graph would report false orphans, so the rules abstain instead.
func buildURLRows(crawlID int64, pages []dataforseo.PageResult) []*models.URL {
	htmlComplete := true
	htmlByURL := make(map[string]string, len(pages))
	for _, p := range pages {
		htmlByURL[p.URL] = p.RawHTML
		if p.StatusCode != nil && *p.StatusCode == 200 && p.RawHTML == "" {
			htmlComplete = false
		}
	}

	var graph map[string]LinkCounts
	if htmlComplete {
		graph = BuildLinkGraph(htmlByURL)
	}

	urls := make([]*models.URL, 0, len(pages))
	for _, p := range pages {
		u := &models.URL{
			CrawlID:         crawlID,
			URL:             p.URL,
			StatusCode:      p.StatusCode,
			Title:           p.Title,
			MetaDescription: p.Description,
			WordCount:       p.WordCount,
		}

		if p.Title != nil {
			n := utf8.RuneCountInString(*p.Title)
			u.TitleLength = &n
		}
		if p.Description != nil {
			n := utf8.RuneCountInString(*p.Description)
			u.MetaDescriptionLength = &n
		}
		if len(p.H1) > 0 {
			h1 := p.H1[0]
			u.H1 = &h1
		}

		if graph != nil {
			c := graph[p.URL]
			in, out := c.Inbound, c.Outbound
			u.InboundLinks = &in
			u.OutboundLinks = &out
		}

		urls = append(urls, u)
	}
	return urls
}

// fetchPerformance runs bounded parallel PageSpeed fetches, mobile strategy.
// A failed fetch leaves the URL's metrics null for the backfill worker and
// never aborts the run.
func (o *Orchestrator) fetchPerformance(ctx context.Context, urls []*models.URL) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, u := range urls {
		if u.StatusCode == nil || *u.StatusCode != 200 {
			continue
		}
		u := u
		g.Go(func() error {
			metrics, err := o.perf.Fetch(gctx, u.URL, models.StrategyMobile)
			if err != nil {
				log.Printf("audit: pagespeed %s: %v", u.URL, err)
				if ierr := o.store.IncrementPerformanceAttempts(gctx, u.ID); ierr != nil {
					log.Printf("audit: record attempt for url %d: %v", u.ID, ierr)
				}
				return nil
			}

			u.PerformanceScoreMobile = metrics.PerformanceScore
			u.LCP = metrics.LCP
			u.CLS = metrics.CLS
			u.TBT = metrics.TBT
			u.PerformanceAttempts++

			if uerr := o.store.UpdateURLPerformance(gctx, u); uerr != nil {
				log.Printf("audit: save performance for url %d: %v", u.ID, uerr)
			}
			return nil
		})
	}

	g.Wait()
}

// exportReport uploads a crawl summary when an exporter is configured.
// Export failure never fails the crawl.
func (o *Orchestrator) exportReport(ctx context.Context, project *models.Project, crawl *models.Crawl) {
	if o.exporter == nil {
		return
	}

	totalURLs, err := o.store.CountURLs(ctx, crawl.ID)
	if err != nil {
		log.Printf("audit: export crawl %d: count urls: %v", crawl.ID, err)
		return
	}
	totalIssues, err := o.store.CountIssues(ctx, crawl.ID)
	if err != nil {
		log.Printf("audit: export crawl %d: count issues: %v", crawl.ID, err)
		return
	}
	bySeverity, err := o.store.CountIssuesBySeverity(ctx, crawl.ID)
	if err != nil {
		log.Printf("audit: export crawl %d: severity counts: %v", crawl.ID, err)
		return
	}
	byCategory, err := o.store.CountIssuesByCategory(ctx, crawl.ID)
	if err != nil {
		log.Printf("audit: export crawl %d: category counts: %v", crawl.ID, err)
		return
	}
	byType, err := o.store.CountIssuesByType(ctx, crawl.ID)
	if err != nil {
		log.Printf("audit: export crawl %d: type counts: %v", crawl.ID, err)
		return
	}

	report := &export.Report{
		Project:     *project,
		Crawl:       *crawl,
		TotalURLs:   totalURLs,
		TotalIssues: totalIssues,
		BySeverity:  bySeverity,
		ByCategory:  byCategory,
		ByType:      byType,
	}
	if _, err := o.exporter.Upload(ctx, report); err != nil {
		log.Printf("audit: export crawl %d: %v", crawl.ID, err)
	}
}
