package storage

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"seo_auditor/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		domain TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		status TEXT NOT NULL DEFAULT 'running',
		task_id TEXT,
		site_health REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS urls (
		id INTEGER PRIMARY KEY,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id),
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
		performance_score_mobile REAL,
		performance_score_desktop REAL,
		lcp REAL,
		cls REAL,
		tbt REAL,
		performance_attempts INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS issue_types (
		id INTEGER PRIMARY KEY,
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
		id INTEGER PRIMARY KEY,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id),
		url_id INTEGER NOT NULL REFERENCES urls(id),
		issue_type_id INTEGER NOT NULL REFERENCES issue_types(id),
		status TEXT NOT NULL DEFAULT 'pending',
		implemented BOOLEAN NOT NULL DEFAULT FALSE,
		details TEXT,
		comment TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_project ON crawls(project_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_urls_crawl ON urls(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_issues_crawl ON issues(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_issues_type ON issues(crawl_id, issue_type_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Issue Types
// =============================================================================

func (s *SQLiteStore) InsertIssueType(ctx context.Context, it *models.IssueType) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO issue_types (code, name, severity, category, description, fix_template, why_it_matters, technical_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Code, it.Name, it.Severity, it.Category, it.Description, it.FixTemplate, it.WhyItMatters, it.TechnicalNotes)
	if err != nil {
		return err
	}
	it.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) GetIssueTypeByCode(ctx context.Context, code string) (*models.IssueType, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, severity, category, description, fix_template, why_it_matters, technical_notes
		FROM issue_types WHERE code = ?`, code)

	var it models.IssueType
	err := row.Scan(&it.ID, &it.Code, &it.Name, &it.Severity, &it.Category, &it.Description, &it.FixTemplate, &it.WhyItMatters, &it.TechnicalNotes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *SQLiteStore) ListIssueTypes(ctx context.Context) ([]models.IssueType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, severity, category, description, fix_template, why_it_matters, technical_notes
		FROM issue_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.IssueType
	for rows.Next() {
		var it models.IssueType
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Severity, &it.Category, &it.Description, &it.FixTemplate, &it.WhyItMatters, &it.TechnicalNotes); err != nil {
			return nil, err
		}
		types = append(types, it)
	}
	return types, rows.Err()
}

// =============================================================================
// Projects
// =============================================================================

func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (name, domain, created_at) VALUES (?, ?, ?)`,
		p.Name, p.Domain, p.CreatedAt)
	if err != nil {
		return err
	}
	p.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, domain, created_at FROM projects WHERE id = ?`, id)

	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) GetProjectByDomain(ctx context.Context, domain string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, domain, created_at FROM projects WHERE domain = ?`, domain)

	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Domain, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, domain, created_at FROM projects ORDER BY id`)
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

func (s *SQLiteStore) CreateCrawl(ctx context.Context, c *models.Crawl) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO crawls (project_id, started_at, status, task_id, site_health)
		VALUES (?, ?, ?, ?, ?)`,
		c.ProjectID, c.StartedAt, c.Status, c.TaskID, c.SiteHealth)
	if err != nil {
		return err
	}
	c.ID, err = result.LastInsertId()
	return err
}

func (s *SQLiteStore) UpdateCrawl(ctx context.Context, c *models.Crawl) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE crawls SET finished_at = ?, status = ?, task_id = ?, site_health = ? WHERE id = ?`,
		c.FinishedAt, c.Status, c.TaskID, c.SiteHealth, c.ID)
	return err
}

func (s *SQLiteStore) GetCrawl(ctx context.Context, id int64) (*models.Crawl, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE id = ?`, id)

	var c models.Crawl
	err := row.Scan(&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) ListCrawls(ctx context.Context, projectID int64) ([]models.Crawl, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE project_id = ? ORDER BY started_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crawls []models.Crawl
	for rows.Next() {
		var c models.Crawl
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth); err != nil {
			return nil, err
		}
		crawls = append(crawls, c)
	}
	return crawls, rows.Err()
}

func (s *SQLiteStore) GetLatestCrawl(ctx context.Context, projectID int64) (*models.Crawl, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, started_at, finished_at, status, task_id, site_health
		FROM crawls WHERE project_id = ?
		ORDER BY started_at DESC LIMIT 1`, projectID)

	var c models.Crawl
	err := row.Scan(&c.ID, &c.ProjectID, &c.StartedAt, &c.FinishedAt, &c.Status, &c.TaskID, &c.SiteHealth)
	if err == sql.ErrNoRows {
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

func (s *SQLiteStore) InsertURLs(ctx context.Context, urls []*models.URL) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO urls (
			crawl_id, url, status_code, title, title_length, meta_description, meta_description_length,
			h1, word_count, inbound_links, outbound_links, performance_attempts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range urls {
		result, err := stmt.ExecContext(ctx,
			u.CrawlID, u.URL, u.StatusCode, u.Title, u.TitleLength, u.MetaDescription, u.MetaDescriptionLength,
			u.H1, u.WordCount, u.InboundLinks, u.OutboundLinks)
		if err != nil {
			return err
		}
		if u.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) UpdateURLPerformance(ctx context.Context, u *models.URL) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE urls SET
			performance_score_mobile = ?, performance_score_desktop = ?,
			lcp = ?, cls = ?, tbt = ?, performance_attempts = ?
		WHERE id = ?`,
		u.PerformanceScoreMobile, u.PerformanceScoreDesktop, u.LCP, u.CLS, u.TBT, u.PerformanceAttempts, u.ID)
	return err
}

func (s *SQLiteStore) IncrementPerformanceAttempts(ctx context.Context, urlID int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE urls SET performance_attempts = performance_attempts + 1 WHERE id = ?`, urlID)
	return err
}

const sqliteURLColumns = `id, crawl_id, url, status_code, title, title_length, meta_description, meta_description_length,
	h1, word_count, inbound_links, outbound_links, performance_score_mobile, performance_score_desktop,
	lcp, cls, tbt, performance_attempts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteURL(row rowScanner, u *models.URL) error {
	return row.Scan(
		&u.ID, &u.CrawlID, &u.URL, &u.StatusCode, &u.Title, &u.TitleLength, &u.MetaDescription, &u.MetaDescriptionLength,
		&u.H1, &u.WordCount, &u.InboundLinks, &u.OutboundLinks, &u.PerformanceScoreMobile, &u.PerformanceScoreDesktop,
		&u.LCP, &u.CLS, &u.TBT, &u.PerformanceAttempts,
	)
}

func (s *SQLiteStore) GetURL(ctx context.Context, id int64) (*models.URL, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteURLColumns+` FROM urls WHERE id = ?`, id)

	var u models.URL
	err := scanSQLiteURL(row, &u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) ListURLs(ctx context.Context, crawlID int64) ([]models.URL, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteURLColumns+` FROM urls WHERE crawl_id = ? ORDER BY id`, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []models.URL
	for rows.Next() {
		var u models.URL
		if err := scanSQLiteURL(rows, &u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *SQLiteStore) ListURLsMissingPerformance(ctx context.Context, limit int) ([]models.URL, error) {
	rows, err := s.db.QueryContext(ctx, `
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
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []models.URL
	for rows.Next() {
		var u models.URL
		if err := scanSQLiteURL(rows, &u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *SQLiteStore) CountURLs(ctx context.Context, crawlID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls WHERE crawl_id = ?`, crawlID).Scan(&count)
	return count, err
}

// =============================================================================
// Issues
// =============================================================================

func (s *SQLiteStore) ReplaceIssues(ctx context.Context, crawlID int64, issues []*models.Issue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE crawl_id = ?`, crawlID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues (crawl_id, url_id, issue_type_id, status, implemented, details, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, i := range issues {
		result, err := stmt.ExecContext(ctx,
			crawlID, i.URLID, i.IssueTypeID, i.Status, i.Implemented, i.Details, i.Comment, i.CreatedAt, i.UpdatedAt)
		if err != nil {
			return err
		}
		if i.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const sqliteIssueColumns = `id, crawl_id, url_id, issue_type_id, status, implemented, details, comment, created_at, updated_at`

func scanSQLiteIssue(row rowScanner, i *models.Issue) error {
	return row.Scan(
		&i.ID, &i.CrawlID, &i.URLID, &i.IssueTypeID, &i.Status, &i.Implemented, &i.Details, &i.Comment, &i.CreatedAt, &i.UpdatedAt,
	)
}

func (s *SQLiteStore) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteIssueColumns+` FROM issues WHERE id = ?`, id)

	var i models.Issue
	err := scanSQLiteIssue(row, &i)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *SQLiteStore) UpdateIssue(ctx context.Context, i *models.Issue) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE issues SET status = ?, implemented = ?, comment = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		i.Status, i.Implemented, i.Comment, i.ID)
	return err
}

func (s *SQLiteStore) ListIssues(ctx context.Context, crawlID int64) ([]models.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteIssueColumns+` FROM issues WHERE crawl_id = ? ORDER BY id`, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIssues(rows)
}

func (s *SQLiteStore) ListIssuesByType(ctx context.Context, crawlID, issueTypeID int64) ([]models.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sqliteIssueColumns+` FROM issues WHERE crawl_id = ? AND issue_type_id = ? ORDER BY id`,
		crawlID, issueTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIssues(rows)
}

func collectIssues(rows *sql.Rows) ([]models.Issue, error) {
	var issues []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := scanSQLiteIssue(rows, &i); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func (s *SQLiteStore) CountIssues(ctx context.Context, crawlID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM issues WHERE crawl_id = ?`, crawlID).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountIssuesByType(ctx context.Context, crawlID int64) ([]models.IssueTypeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT it.code, it.name, it.severity, it.category, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = ?
		GROUP BY it.code, it.name, it.severity, it.category
		ORDER BY COUNT(*) DESC, it.code`, crawlID)
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

func (s *SQLiteStore) CountIssuesBySeverity(ctx context.Context, crawlID int64) (map[string]int, error) {
	return s.groupCount(ctx, `
		SELECT it.severity, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = ?
		GROUP BY it.severity`, crawlID)
}

func (s *SQLiteStore) CountIssuesByCategory(ctx context.Context, crawlID int64) (map[string]int, error) {
	return s.groupCount(ctx, `
		SELECT it.category, COUNT(*)
		FROM issues i
		JOIN issue_types it ON it.id = i.issue_type_id
		WHERE i.crawl_id = ?
		GROUP BY it.category`, crawlID)
}

func (s *SQLiteStore) groupCount(ctx context.Context, query string, crawlID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, crawlID)
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
