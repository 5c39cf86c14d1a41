package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"seo_auditor/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedProject(t *testing.T, store *SQLiteStore, domain string) *models.Project {
	t.Helper()
	p := &models.Project{Name: "Test " + domain, Domain: domain, CreatedAt: time.Now()}
	if err := store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func seedFinishedCrawl(t *testing.T, store *SQLiteStore, projectID int64) *models.Crawl {
	t.Helper()
	c := &models.Crawl{ProjectID: projectID, StartedAt: time.Now(), Status: models.CrawlStatusFinished}
	if err := store.CreateCrawl(context.Background(), c); err != nil {
		t.Fatalf("create crawl: %v", err)
	}
	return c
}

func intP(v int) *int { return &v }

func strP(v string) *string { return &v }

func floatP(v float64) *float64 { return &v }

func TestProjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	p := seedProject(t, store, "example.com")
	if p.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	got, err := store.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Domain != "example.com" || got.Name != p.Name {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	byDomain, err := store.GetProjectByDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("get by domain: %v", err)
	}
	if byDomain == nil || byDomain.ID != p.ID {
		t.Fatalf("lookup by domain mismatch: %+v", byDomain)
	}

	missing, err := store.GetProject(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("missing project must return nil, nil")
	}
}

func TestProjectDomainUnique(t *testing.T) {
	store := openTestStore(t)
	seedProject(t, store, "example.com")

	dup := &models.Project{Name: "Dup", Domain: "example.com", CreatedAt: time.Now()}
	if err := store.CreateProject(context.Background(), dup); err == nil {
		t.Fatal("expected unique constraint violation for duplicate domain")
	}
}

func TestCrawlLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")

	c := &models.Crawl{ProjectID: p.ID, StartedAt: time.Now(), Status: models.CrawlStatusRunning}
	if err := store.CreateCrawl(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	taskID := "task-123"
	finished := time.Now()
	c.Status = models.CrawlStatusFinished
	c.TaskID = &taskID
	c.FinishedAt = &finished
	c.SiteHealth = 87.5
	if err := store.UpdateCrawl(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetCrawl(ctx, c.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.CrawlStatusFinished || got.SiteHealth != 87.5 {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.TaskID == nil || *got.TaskID != taskID {
		t.Fatalf("task id not persisted: %v", got.TaskID)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished_at not persisted")
	}
}

func TestGetLatestCrawl(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")

	older := &models.Crawl{ProjectID: p.ID, StartedAt: time.Now().Add(-time.Hour), Status: models.CrawlStatusFinished}
	newer := &models.Crawl{ProjectID: p.ID, StartedAt: time.Now(), Status: models.CrawlStatusRunning}
	for _, c := range []*models.Crawl{older, newer} {
		if err := store.CreateCrawl(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	latest, err := store.GetLatestCrawl(ctx, p.ID)
	if err != nil || latest == nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest: want crawl %d, got %d", newer.ID, latest.ID)
	}

	crawls, err := store.ListCrawls(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(crawls) != 2 || crawls[0].ID != newer.ID {
		t.Fatalf("list order wrong: %+v", crawls)
	}

	none, err := store.GetLatestCrawl(ctx, 9999)
	if err != nil {
		t.Fatalf("latest missing: %v", err)
	}
	if none != nil {
		t.Fatal("project without crawls must return nil, nil")
	}
}

func TestInsertURLsAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")
	c := seedFinishedCrawl(t, store, p.ID)

	urls := []*models.URL{
		{CrawlID: c.ID, URL: "https://example.com/", StatusCode: intP(200), Title: strP("Home"), WordCount: intP(400)},
		{CrawlID: c.ID, URL: "https://example.com/about", StatusCode: intP(200)},
	}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if urls[0].ID == 0 || urls[1].ID == 0 || urls[0].ID == urls[1].ID {
		t.Fatalf("ids not assigned: %d, %d", urls[0].ID, urls[1].ID)
	}

	got, err := store.GetURL(ctx, urls[0].ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title == nil || *got.Title != "Home" {
		t.Fatalf("title not persisted: %v", got.Title)
	}
	if got.MetaDescription != nil || got.LCP != nil {
		t.Fatal("absent fields must come back nil")
	}

	n, err := store.CountURLs(ctx, c.ID)
	if err != nil || n != 2 {
		t.Fatalf("count: want 2, got %d (%v)", n, err)
	}

	listed, err := store.ListURLs(ctx, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != urls[0].ID {
		t.Fatalf("list order must follow ids: %+v", listed)
	}
}

func TestUpdateURLPerformance(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")
	c := seedFinishedCrawl(t, store, p.ID)

	urls := []*models.URL{{CrawlID: c.ID, URL: "https://example.com/", StatusCode: intP(200)}}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert: %v", err)
	}
	u := urls[0]

	u.PerformanceScoreMobile = floatP(91)
	u.LCP = floatP(1820.5)
	u.CLS = floatP(0.03)
	u.TBT = floatP(140)
	u.PerformanceAttempts = 1
	if err := store.UpdateURLPerformance(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetURL(ctx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.PerformanceScoreMobile == nil || *got.PerformanceScoreMobile != 91 {
		t.Fatalf("score not persisted: %v", got.PerformanceScoreMobile)
	}
	if got.LCP == nil || *got.LCP != 1820.5 {
		t.Fatalf("lcp not persisted: %v", got.LCP)
	}
	if got.PerformanceAttempts != 1 {
		t.Fatalf("attempts: want 1, got %d", got.PerformanceAttempts)
	}

	if err := store.IncrementPerformanceAttempts(ctx, u.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	got, _ = store.GetURL(ctx, u.ID)
	if got.PerformanceAttempts != 2 {
		t.Fatalf("attempts after increment: want 2, got %d", got.PerformanceAttempts)
	}
}

func TestListURLsMissingPerformance(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")

	finished := seedFinishedCrawl(t, store, p.ID)
	running := &models.Crawl{ProjectID: p.ID, StartedAt: time.Now(), Status: models.CrawlStatusRunning}
	if err := store.CreateCrawl(ctx, running); err != nil {
		t.Fatalf("create running crawl: %v", err)
	}

	urls := []*models.URL{
		{CrawlID: finished.ID, URL: "https://example.com/eligible", StatusCode: intP(200)},
		{CrawlID: finished.ID, URL: "https://example.com/scored", StatusCode: intP(200), PerformanceScoreMobile: floatP(80)},
		{CrawlID: finished.ID, URL: "https://example.com/broken", StatusCode: intP(404)},
		{CrawlID: running.ID, URL: "https://example.com/in-progress", StatusCode: intP(200)},
	}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// exhaust the attempt budget on one more eligible row
	exhausted := []*models.URL{{CrawlID: finished.ID, URL: "https://example.com/exhausted", StatusCode: intP(200)}}
	if err := store.InsertURLs(ctx, exhausted); err != nil {
		t.Fatalf("insert: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncrementPerformanceAttempts(ctx, exhausted[0].ID); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	pending, err := store.ListURLsMissingPerformance(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want only the eligible url, got %d rows", len(pending))
	}
	if pending[0].URL != "https://example.com/eligible" {
		t.Fatalf("wrong row selected: %s", pending[0].URL)
	}
}

func seedIssueType(t *testing.T, store *SQLiteStore, code, severity, category string) *models.IssueType {
	t.Helper()
	it := &models.IssueType{Code: code, Name: code, Severity: severity, Category: category}
	if err := store.InsertIssueType(context.Background(), it); err != nil {
		t.Fatalf("insert issue type: %v", err)
	}
	return it
}

func TestIssueTypeLookup(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	it := seedIssueType(t, store, "TITLE_MISSING", models.SeverityMajor, models.CategoryContent)

	got, err := store.GetIssueTypeByCode(ctx, "TITLE_MISSING")
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != it.ID || got.Severity != models.SeverityMajor {
		t.Fatalf("mismatch: %+v", got)
	}

	missing, err := store.GetIssueTypeByCode(ctx, "NO_SUCH_CODE")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("unknown code must return nil, nil")
	}

	types, err := store.ListIssueTypes(ctx)
	if err != nil || len(types) != 1 {
		t.Fatalf("list: %v (%d types)", err, len(types))
	}
}

func TestReplaceIssuesIsFullReplace(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")
	c := seedFinishedCrawl(t, store, p.ID)

	urls := []*models.URL{{CrawlID: c.ID, URL: "https://example.com/", StatusCode: intP(200)}}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert urls: %v", err)
	}

	title := seedIssueType(t, store, "TITLE_MISSING", models.SeverityMajor, models.CategoryContent)
	meta := seedIssueType(t, store, "META_DESCRIPTION_MISSING", models.SeverityMinor, models.CategoryContent)

	now := time.Now()
	first := []*models.Issue{
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: title.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: meta.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.ReplaceIssues(ctx, c.ID, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if first[0].ID == 0 {
		t.Fatal("replace did not assign issue ids")
	}

	second := []*models.Issue{
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: title.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.ReplaceIssues(ctx, c.ID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	issues, err := store.ListIssues(ctx, c.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("replace must discard prior issues: got %d", len(issues))
	}
	if issues[0].IssueTypeID != title.ID {
		t.Fatalf("wrong issue survived: %+v", issues[0])
	}

	n, err := store.CountIssues(ctx, c.ID)
	if err != nil || n != 1 {
		t.Fatalf("count: want 1, got %d (%v)", n, err)
	}
}

func TestUpdateIssueWorkflow(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")
	c := seedFinishedCrawl(t, store, p.ID)

	urls := []*models.URL{{CrawlID: c.ID, URL: "https://example.com/", StatusCode: intP(200)}}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert urls: %v", err)
	}
	it := seedIssueType(t, store, "TITLE_MISSING", models.SeverityMajor, models.CategoryContent)

	now := time.Now()
	issues := []*models.Issue{
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: it.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.ReplaceIssues(ctx, c.ID, issues); err != nil {
		t.Fatalf("replace: %v", err)
	}

	issue := issues[0]
	issue.Status = models.IssueStatusDone
	issue.Implemented = true
	issue.Comment = strP("fixed in template")
	if err := store.UpdateIssue(ctx, issue); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetIssue(ctx, issue.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.IssueStatusDone || !got.Implemented {
		t.Fatalf("workflow fields not persisted: %+v", got)
	}
	if got.Comment == nil || *got.Comment != "fixed in template" {
		t.Fatalf("comment not persisted: %v", got.Comment)
	}

	missing, err := store.GetIssue(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("missing issue must return nil, nil")
	}
}

func TestIssueCounts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := seedProject(t, store, "example.com")
	c := seedFinishedCrawl(t, store, p.ID)

	urls := []*models.URL{
		{CrawlID: c.ID, URL: "https://example.com/", StatusCode: intP(200)},
		{CrawlID: c.ID, URL: "https://example.com/about", StatusCode: intP(200)},
	}
	if err := store.InsertURLs(ctx, urls); err != nil {
		t.Fatalf("insert urls: %v", err)
	}

	title := seedIssueType(t, store, "TITLE_MISSING", models.SeverityMajor, models.CategoryContent)
	crawlErr := seedIssueType(t, store, "CRAWL_ERROR_5XX", models.SeverityCritical, models.CategoryTechnical)

	now := time.Now()
	issues := []*models.Issue{
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: title.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
		{CrawlID: c.ID, URLID: urls[1].ID, IssueTypeID: title.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
		{CrawlID: c.ID, URLID: urls[0].ID, IssueTypeID: crawlErr.ID, Status: models.IssueStatusPending, CreatedAt: now, UpdatedAt: now},
	}
	if err := store.ReplaceIssues(ctx, c.ID, issues); err != nil {
		t.Fatalf("replace: %v", err)
	}

	byType, err := store.CountIssuesByType(ctx, c.ID)
	if err != nil {
		t.Fatalf("by type: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("want 2 type rows, got %d", len(byType))
	}
	// ordered by count desc
	if byType[0].Code != "TITLE_MISSING" || byType[0].Count != 2 {
		t.Fatalf("first row: %+v", byType[0])
	}
	if byType[1].Code != "CRAWL_ERROR_5XX" || byType[1].Count != 1 {
		t.Fatalf("second row: %+v", byType[1])
	}

	bySeverity, err := store.CountIssuesBySeverity(ctx, c.ID)
	if err != nil {
		t.Fatalf("by severity: %v", err)
	}
	if bySeverity[models.SeverityMajor] != 2 || bySeverity[models.SeverityCritical] != 1 {
		t.Fatalf("severity counts: %v", bySeverity)
	}

	byCategory, err := store.CountIssuesByCategory(ctx, c.ID)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if byCategory[models.CategoryContent] != 2 || byCategory[models.CategoryTechnical] != 1 {
		t.Fatalf("category counts: %v", byCategory)
	}

	byTypeIssues, err := store.ListIssuesByType(ctx, c.ID, title.ID)
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(byTypeIssues) != 2 {
		t.Fatalf("want 2 title issues, got %d", len(byTypeIssues))
	}
}
