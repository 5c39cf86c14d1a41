package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"seo_auditor/models"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createProjectRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain" binding:"required"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domain := normalizeDomain(req.Domain)
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid domain"})
		return
	}

	existing, err := s.store.GetProjectByDomain(c.Request.Context(), domain)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a project with this domain already exists"})
		return
	}

	project := &models.Project{
		Name:      req.Name,
		Domain:    domain,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateProject(c.Request.Context(), project); err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// handleRunCrawl runs the full audit pipeline synchronously and returns the
// finished crawl. Collaborator failures surface as 502 with the crawl left
// in failed status.
func (s *Server) handleRunCrawl(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	crawl, err := s.orchestrator.Run(c.Request.Context(), id)
	if err != nil {
		log.Printf("http: crawl for project %d failed: %v", id, err)
		status := http.StatusBadGateway
		body := gin.H{"error": err.Error()}
		if crawl != nil {
			body["crawl"] = crawl
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, crawl)
}

func (s *Server) handleListCrawls(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	project, err := s.store.GetProject(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	crawls, err := s.store.ListCrawls(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if crawls == nil {
		crawls = []models.Crawl{}
	}
	c.JSON(http.StatusOK, crawls)
}

func (s *Server) handleLatestCrawlSummary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	crawl, err := s.store.GetLatestCrawl(ctx, id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if crawl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project has no crawls"})
		return
	}

	totalURLs, err := s.store.CountURLs(ctx, crawl.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	totalIssues, err := s.store.CountIssues(ctx, crawl.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	bySeverity, err := s.store.CountIssuesBySeverity(ctx, crawl.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}
	byCategory, err := s.store.CountIssuesByCategory(ctx, crawl.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CrawlSummary{
		Crawl:            *crawl,
		TotalURLs:        totalURLs,
		TotalIssues:      totalIssues,
		IssuesBySeverity: bySeverity,
		IssuesByCategory: byCategory,
		SiteHealth:       crawl.SiteHealth,
	})
}

func (s *Server) handleIssuesByType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	crawl, err := s.store.GetCrawl(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if crawl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "crawl not found"})
		return
	}

	counts, err := s.store.CountIssuesByType(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if counts == nil {
		counts = []models.IssueTypeCount{}
	}
	c.JSON(http.StatusOK, counts)
}

// handleIssuesForCode lists one issue type's occurrences in a crawl, each
// joined with its URL for display.
func (s *Server) handleIssuesForCode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	code := c.Param("code")
	ctx := c.Request.Context()

	crawl, err := s.store.GetCrawl(ctx, id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if crawl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "crawl not found"})
		return
	}

	issueType, err := s.store.GetIssueTypeByCode(ctx, code)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if issueType == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown issue type"})
		return
	}

	issues, err := s.store.ListIssuesByType(ctx, id, issueType.ID)
	if err != nil {
		s.internalError(c, err)
		return
	}

	type issueWithURL struct {
		models.Issue
		URL string `json:"url"`
	}

	items := make([]issueWithURL, 0, len(issues))
	for _, issue := range issues {
		u, err := s.store.GetURL(ctx, issue.URLID)
		if err != nil {
			s.internalError(c, err)
			return
		}
		item := issueWithURL{Issue: issue}
		if u != nil {
			item.URL = u.URL
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"issue_type": issueType,
		"issues":     items,
	})
}

func (s *Server) handleGetURL(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := s.store.GetURL(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "url not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type updateIssueRequest struct {
	Status      *string `json:"status"`
	Implemented *bool   `json:"implemented"`
	Comment     *string `json:"comment"`
}

// handleUpdateIssue applies workflow changes to one issue. Marking it
// implemented forces status to done; the force is one-directional, clearing
// the flag leaves status alone. Site health is recomputed afterwards.
func (s *Server) handleUpdateIssue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if issue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "issue not found"})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case models.IssueStatusPending, models.IssueStatusInProgress, models.IssueStatusDone:
			issue.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
	}
	if req.Implemented != nil {
		issue.Implemented = *req.Implemented
	}
	if req.Comment != nil {
		issue.Comment = req.Comment
	}

	if issue.Implemented {
		issue.Status = models.IssueStatusDone
	}

	if err := s.store.UpdateIssue(ctx, issue); err != nil {
		s.internalError(c, err)
		return
	}

	health, err := s.engine.RecomputeHealth(ctx, issue.CrawlID)
	if err != nil {
		s.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue":       issue,
		"site_health": health,
	})
}

func (s *Server) internalError(c *gin.Context, err error) {
	log.Printf("http: internal error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// normalizeDomain strips scheme, path, and trailing dots so one site maps
// to one project regardless of how the domain was pasted.
func normalizeDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimSuffix(d, ".")
	if d == "" || strings.ContainsAny(d, " \t") {
		return ""
	}
	return d
}
