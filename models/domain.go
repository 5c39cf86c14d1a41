package models

import (
	"time"
)

// Project represents an audited website (one domain)
type Project struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    string    `json:"domain" db:"domain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Crawl represents one audit execution for a project
type Crawl struct {
	ID         int64      `json:"id" db:"id"`
	ProjectID  int64      `json:"project_id" db:"project_id"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Status     string     `json:"status" db:"status"` // running, finished, failed
	TaskID     *string    `json:"task_id" db:"task_id"`
	SiteHealth float64    `json:"site_health" db:"site_health"`
}

// URL represents one crawled page within a crawl
type URL struct {
	ID                    int64   `json:"id" db:"id"`
	CrawlID               int64   `json:"crawl_id" db:"crawl_id"`
	URL                   string  `json:"url" db:"url"`
	StatusCode            *int    `json:"status_code" db:"status_code"`
	Title                 *string `json:"title" db:"title"`
	TitleLength           *int    `json:"title_length" db:"title_length"`
	MetaDescription       *string `json:"meta_description" db:"meta_description"`
	MetaDescriptionLength *int    `json:"meta_description_length" db:"meta_description_length"`
	H1                    *string `json:"h1" db:"h1"`
	WordCount             *int    `json:"word_count" db:"word_count"`

	// Internal link graph (nullable: absent when the crawl source returned no HTML)
	InboundLinks  *int `json:"inbound_links" db:"inbound_links"`
	OutboundLinks *int `json:"outbound_links" db:"outbound_links"`

	// PageSpeed metrics (nullable until the performance fetch succeeds)
	PerformanceScoreMobile  *float64 `json:"performance_score_mobile" db:"performance_score_mobile"`
	PerformanceScoreDesktop *float64 `json:"performance_score_desktop" db:"performance_score_desktop"`
	LCP                     *float64 `json:"lcp" db:"lcp"` // ms
	CLS                     *float64 `json:"cls" db:"cls"`
	TBT                     *float64 `json:"tbt" db:"tbt"` // ms

	PerformanceAttempts int `json:"performance_attempts" db:"performance_attempts"`
}

// IssueType is a catalog definition of a detectable problem
type IssueType struct {
	ID             int64   `json:"id" db:"id"`
	Code           string  `json:"code" db:"code"`
	Name           string  `json:"name" db:"name"`
	Severity       string  `json:"severity" db:"severity"` // critical, major, minor
	Category       string  `json:"category" db:"category"`
	Description    string  `json:"description" db:"description"`
	FixTemplate    string  `json:"fix_template" db:"fix_template"`
	WhyItMatters   string  `json:"why_it_matters" db:"why_it_matters"`
	TechnicalNotes *string `json:"technical_notes" db:"technical_notes"`
}

// Issue is one rule firing against one URL within one crawl
type Issue struct {
	ID          int64     `json:"id" db:"id"`
	CrawlID     int64     `json:"crawl_id" db:"crawl_id"`
	URLID       int64     `json:"url_id" db:"url_id"`
	IssueTypeID int64     `json:"issue_type_id" db:"issue_type_id"`
	Status      string    `json:"status" db:"status"` // pending, in_progress, done
	Implemented bool      `json:"implemented" db:"implemented"`
	Details     *string   `json:"details" db:"details"` // JSON evidence, e.g. sibling URLs
	Comment     *string   `json:"comment" db:"comment"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IssueTypeCount is a grouped issue count for the reporting surface
type IssueTypeCount struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CrawlSummary aggregates the latest crawl for the dashboard
type CrawlSummary struct {
	Crawl            Crawl          `json:"crawl"`
	TotalURLs        int            `json:"total_urls"`
	TotalIssues      int            `json:"total_issues"`
	IssuesBySeverity map[string]int `json:"issues_by_severity"`
	IssuesByCategory map[string]int `json:"issues_by_category"`
	SiteHealth       float64        `json:"site_health"`
}

// Crawl status
const (
	CrawlStatusRunning  = "running"
	CrawlStatusFinished = "finished"
	CrawlStatusFailed   = "failed"
)

// Issue workflow status
const (
	IssueStatusPending    = "pending"
	IssueStatusInProgress = "in_progress"
	IssueStatusDone       = "done"
)

// Severities
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// Categories
const (
	CategoryTechnical            = "technical"
	CategoryContent              = "content"
	CategoryPerformance          = "performance"
	CategoryLinks                = "links"
	CategorySecurity             = "security"
	CategoryStructuredData       = "structured_data"
	CategorySitemap              = "sitemap"
	CategoryInternationalization = "internationalization"
	CategoryJavaScript           = "javascript"
)

// PageSpeed strategies
const (
	StrategyMobile  = "mobile"
	StrategyDesktop = "desktop"
)
