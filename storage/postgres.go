package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"seo_auditor/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		domain TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS crawls (
		id BIGSERIAL PRIMARY KEY,
		project_id BIGINT NOT NULL REFERENCES projects(id),
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'running',
		task_id TEXT,
		site_health DOUBLE PRECISION NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS urls (
		id BIGSERIAL PRIMARY KEY,
		crawl_id BIGINT NOT NULL REFERENCES crawls(id),
		url TEXT NOT NULL,
		status_code INTEGER,
		title TEXT,
		title_length INTEGER,
		meta_description TEXT,
		meta_description_length INTEGER,
		h1 TEXT,
		word_count INTEGER,
		inbound_links INTEGER,
		outbound_links INTEGER,
		performance_score_mobile DOUBLE PRECISION,
		performance_score_desktop DOUBLE PRECISION,
		lcp DOUBLE PRECISION,
		cls DOUBLE PRECISION,
		tbt DOUBLE PRECISION,
		performance_attempts INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS issue_types (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		severity TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		fix_template TEXT NOT NULL DEFAULT '',
		why_it_matters TEXT NOT NULL DEFAULT '',
		technical_notes TEXT
	);

	CREATE TABLE IF NOT EXISTS issues (
		id BIGSERIAL PRIMARY KEY,
		crawl_id BIGINT NOT NULL REFERENCES crawls(id),
		url_id BIGINT NOT NULL REFERENCES urls(id),
		issue_type_id BIGINT NOT NULL REFERENCES issue_types(id),
		status TEXT NOT NULL DEFAULT 'pending',
		implemented BOOLEAN NOT NULL DEFAULT FALSE,
		details TEXT,
		comment TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_project ON crawls(project_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_urls_crawl ON urls(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_urls_perf_pending ON urls(performance_attempts) WHERE performance_score_mobile IS NULL;
	CREATE INDEX IF NOT EXISTS idx_issues_crawl ON issues(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_issues_type ON issues(crawl_id, issue_type_id);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Issue Types
// =============================================================================

func (s *PostgresStore) InsertIssueType(ctx context.Context, it *models.IssueType) error {
	query := `
		INSERT INTO issue_types (code, name, severity, category, description, fix_template, why_it_matters, technical_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		it.Code, it.Name, it.Severity, it.Category, it.Description, it.FixTemplate, it.WhyItMatters, it.TechnicalNotes,
	).Scan(&it.ID)
}

func (s *PostgresStore) GetIssueTypeByCode(ctx context.Context, code string) (*models.IssueType, error) {
	query := `
		SELECT id, code, name, severity, category, description, fix_template, why_it_matters, technical_notes
		FROM issue_types WHERE code = $1`

	var it models.IssueType
	err := s.pool.QueryRow(ctx, query, code).Scan(
		&it.ID, &it.Code, &it.Name, &it.Severity, &it.Category, &it.Description, &it.FixTemplate, &it.WhyItMatters, &it.TechnicalNotes,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PostgresStore) ListIssueTypes(ctx context.Context) ([]models.IssueType, error) {
	query := `
		SELECT id, code, name, severity, category, description, fix_template, why_it_matters, technical_notes
		FROM issue_types ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.IssueType
	for rows.Next() {
		var it models.IssueType
		if err := rows.Scan(
			&it.ID, &it.Code, &it.Name, &it.Severity, &it.Category, &it.Description, &it.FixTemplate, &it.WhyItMatters, &it.TechnicalNotes,
		); err != nil {
			return nil, err
		}
		types = append(types, it)
	}
	return types, rows.Err()
}

// =============================================================================
// Projects
// =============================================================================

func (s *PostgresStore) CreateProject(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (name, domain, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	return s.pool.QueryRow(ctx, query, p.Name, p.Domain, p.CreatedAt).Scan(&p.ID)
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT id, name, domain, created_at FROM projects WHERE id = $1`

	var p models.Project
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetProjectByDomain(ctx context.Context, domain string) (*models.Project, error) {
	query := `SELECT id, name, domain, created_at FROM projects WHERE domain = $1`

	var p models.Project
	err := s.pool.QueryRow(ctx, query, domain).Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT id, name, domain, created_at FROM projects ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// =============================================================================
// Crawls
// =============================================================================

func (s *PostgresStore) CreateCrawl(ctx context.Context, c *models.Crawl) error {
	query := `
		INSERT INTO crawls (project_id, started_at, status, task_id, site_health)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		c.ProjectID, c.StartedAt, c.Status, c.TaskID, c.SiteHealth,
	).Scan(&c.ID)
}

func (s *PostgresStore) UpdateCrawl(ctx context.Context, c *models.Crawl) error {
	query := `
		UPDATE crawls SET finished_at = $2, status = $3, task_id = $4, site_health = $5
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, c.ID, c.FinishedAt, c.Status, c.TaskID, c.SiteHealth)
	return err
}

func (s *PostgresStore) GetCrawl(ctx context.Context, id int64) (*models.Crawl, error) {
	query := `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE id = $1`

	var c models.Crawl
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListCrawls(ctx context.Context, projectID int64) ([]models.Crawl, error) {
	query := `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE project_id = $1 ORDER BY started_at DESC`

	rows, err := s.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crawls []models.Crawl
	for rows.Next() {
		var c models.Crawl
		if err := rows.Scan(
			&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth,
		); err != nil {
			return nil, err
		}
		crawls = append(crawls, c)
	}
	return crawls, rows.Err()
}

func (s *PostgresStore) GetLatestCrawl(ctx context.Context, projectID int64) (*models.Crawl, error) {
	query := `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE project_id = $1
		ORDER BY started_at DESC
		LIMIT 1`

	var c models.Crawl
	err := s.pool.QueryRow(ctx, query, projectID).Scan(
		&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// =============================================================================
// URLs
// =============================================================================

func (s *PostgresStore) InsertURLs(ctx context.Context, urls []*models.URL) error {
	query := `
		INSERT INTO urls (
			crawl_id, url, status_code, title, title_length, meta_description, meta_description_length,
			h1, word_count, inbound_links, outbound_links, performance_attempts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0)
		RETURNING id`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range urls {
		if err := tx.QueryRow(ctx, query,
			u.CrawlID, u.URL, u.StatusCode, u.Title, u.TitleLength, u.MetaDescription, u.MetaDescriptionLength,
			u.H1, u.WordCount, u.InboundLinks, u.OutboundLinks,
		).Scan(&u.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) UpdateURLPerformance(ctx context.Context, u *models.URL) error {
	query := `
		UPDATE urls SET
			performance_score_mobile = $2, performance_score_desktop = $3,
			lcp = $4, cls = $5, tbt = $6, performance_attempts = $7
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		u.ID, u.PerformanceScoreMobile, u.PerformanceScoreDesktop, u.LCP, u.CLS, u.TBT, u.PerformanceAttempts,
	)
	return err
}

func (s *PostgresStore) IncrementPerformanceAttempts(ctx context.Context, urlID int64) error {
	query := `UPDATE urls SET performance_attempts = performance_attempts + 1 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, urlID)
	return err
}

const urlColumns = `id, crawl_id, url, status_code, title, title_length, meta_description, meta_description_length,
	h1, word_count, inbound_links, outbound_links, performance_score_mobile, performance_score_desktop,
	lcp, cls, tbt, performance_attempts`

func scanURL(row pgx.Row, u *models.URL) error {
	return row.Scan(
		&u.ID, &u.CrawlID, &u.URL, &u.StatusCode, &u.Title, &u.TitleLength, &u.MetaDescription, &u.MetaDescriptionLength,
		&u.H1, &u.WordCount, &u.InboundLinks, &u.OutboundLinks, &u.PerformanceScoreMobile, &u.PerformanceScoreDesktop,
		&u.LCP, &u.CLS, &u.TBT, &u.PerformanceAttempts,
	)
}

func (s *PostgresStore) GetURL(ctx context.Context, id int64) (*models.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE id = $1`

	var u models.URL
	err := scanURL(s.pool.QueryRow(ctx, query, id), &u)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) ListURLs(ctx context.Context, crawlID int64) ([]models.URL, error) {
	query := `SELECT ` + urlColumns + ` FROM urls WHERE crawl_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []models.URL
	for rows.Next() {
		var u models.URL
		if err := scanURL(rows, &u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *PostgresStore) ListURLsMissingPerformance(ctx context.Context, limit int) ([]models.URL, error) {
	query := `
		SELECT u.id, u.crawl_id, u.url, u.status_code, u.title, u.title_length, u.meta_description, u.meta_description_length,
			u.h1, u.word_count, u.inbound_links, u.outbound_links, u.performance_score_mobile, u.performance_score_desktop,
			u.lcp, u.cls, u.tbt, u.performance_attempts
		FROM urls u
		JOIN crawls c ON c.id = u.crawl_id
		WHERE c.status = 'finished'
			AND u.performance_score_mobile IS NULL
			AND u.performance_attempts < 3
			AND u.status_code = 200
		ORDER BY u.id
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []models.URL
	for rows.Next() {
		var u models.URL
		if err := scanURL(rows, &u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *PostgresStore) CountURLs(ctx context.Context, crawlID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM urls WHERE crawl_id = $1`, crawlID).Scan(&count)
	return count, err
}

// =============================================================================
// Issues
// =============================================================================

// ReplaceIssues swaps the crawl's entire issue set in one transaction so a
// failed re-evaluation never leaves a half-written state.
func (s *PostgresStore) ReplaceIssues(ctx context.Context, crawlID int64, issues []*models.Issue) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM issues WHERE crawl_id = $1`, crawlID); err != nil {
		return err
	}

	query := `
		INSERT INTO issues (crawl_id, url_id, issue_type_id, status, implemented, details, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	for _, i := range issues {
		if err := tx.QueryRow(ctx, query,
			crawlID, i.URLID, i.IssueTypeID, i.Status, i.Implemented, i.Details, i.Comment, i.CreatedAt, i.UpdatedAt,
		).Scan(&i.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const issueColumns = `id, crawl_id, url_id, issue_type_id, status, implemented, details, comment, created_at, updated_at`

func scanIssue(row pgx.Row, i *models.Issue) error {
	return row.Scan(
		&i.ID, &i.CrawlID, &i.URLID, &i.IssueTypeID, &i.Status, &i.Implemented, &i.Details, &i.Comment, &i.CreatedAt, &i.UpdatedAt,
	)
}

func (s *PostgresStore) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1`

	var i models.Issue
	err := scanIssue(s.pool.QueryRow(ctx, query, id), &i)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *PostgresStore) UpdateIssue(ctx context.Context, i *models.Issue) error {
	query := `
		UPDATE issues SET status = $2, implemented = $3, comment = $4, updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query, i.ID, i.Status, i.Implemented, i.Comment)
	return err
}

func (s *PostgresStore) ListIssues(ctx context.Context, crawlID int64) ([]models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE crawl_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := scanIssue(rows, &i); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (s *PostgresStore) ListIssuesByType(ctx context.Context, crawlID, issueTypeID int64) ([]models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE crawl_id = $1 AND issue_type_id = $2 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, crawlID, issueTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := scanIssue(rows, &i); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (s *PostgresStore) CountIssues(ctx context.Context, crawlID int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE crawl_id = $1`, crawlID).Scan(&count)
	return count, err
}

func (s *PostgresStore) CountIssuesByType(ctx context.Context, crawlID int64) ([]models.IssueTypeCount, error) {
	query := `
		SELECT it.code, it.name, it.severity, it.category, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = $1
		GROUP BY it.code, it.name, it.severity, it.category
		ORDER BY COUNT(*) DESC, it.code`

	rows, err := s.pool.Query(ctx, query, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.IssueTypeCount
	for rows.Next() {
		var c models.IssueTypeCount
		if err := rows.Scan(&c.Code, &c.Name, &c.Severity, &c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CountIssuesBySeverity(ctx context.Context, crawlID int64) (map[string]int, error) {
	query := `
		SELECT it.severity, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = $1
		GROUP BY it.severity`

	return s.groupCount(ctx, query, crawlID)
}

func (s *PostgresStore) CountIssuesByCategory(ctx context.Context, crawlID int64) (map[string]int, error) {
	query := `
		SELECT it.category, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = $1
		GROUP BY it.category`

	return s.groupCount(ctx, query, crawlID)
}

func (s *PostgresStore) groupCount(ctx context.Context, query string, crawlID int64) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, query, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
