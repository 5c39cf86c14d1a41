package storage

import (
	"context"

	"seo_auditor/models"
)

// Store is implemented by both backends. Lookups return (nil, nil) when the
// row does not exist.
type Store interface {
	Close() error

	// Issue type catalog
	InsertIssueType(ctx context.Context, it *models.IssueType) error
	GetIssueTypeByCode(ctx context.Context, code string) (*models.IssueType, error)
	ListIssueTypes(ctx context.Context) ([]models.IssueType, error)

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	GetProjectByDomain(ctx context.Context, domain string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	// Crawls
	CreateCrawl(ctx context.Context, c *models.Crawl) error
	UpdateCrawl(ctx context.Context, c *models.Crawl) error
	GetCrawl(ctx context.Context, id int64) (*models.Crawl, error)
	ListCrawls(ctx context.Context, projectID int64) ([]models.Crawl, error)
	GetLatestCrawl(ctx context.Context, projectID int64) (*models.Crawl, error)

	// URLs
	InsertURLs(ctx context.Context, urls []*models.URL) error
	UpdateURLPerformance(ctx context.Context, u *models.URL) error
	IncrementPerformanceAttempts(ctx context.Context, urlID int64) error
	GetURL(ctx context.Context, id int64) (*models.URL, error)
	ListURLs(ctx context.Context, crawlID int64) ([]models.URL, error)
	ListURLsMissingPerformance(ctx context.Context, limit int) ([]models.URL, error)
	CountURLs(ctx context.Context, crawlID int64) (int, error)

	// Issues
	ReplaceIssues(ctx context.Context, crawlID int64, issues []*models.Issue) error
	GetIssue(ctx context.Context, id int64) (*models.Issue, error)
	UpdateIssue(ctx context.Context, i *models.Issue) error
	ListIssues(ctx context.Context, crawlID int64) ([]models.Issue, error)
	ListIssuesByType(ctx context.Context, crawlID, issueTypeID int64) ([]models.Issue, error)
	CountIssues(ctx context.Context, crawlID int64) (int, error)
	CountIssuesByType(ctx context.Context, crawlID int64) ([]models.IssueTypeCount, error)
	CountIssuesBySeverity(ctx context.Context, crawlID int64) (map[string]int, error)
	CountIssuesByCategory(ctx context.Context, crawlID int64) (map[string]int, error)
}
