package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"seo_auditor/config"
)

const (
	pollDelay   = 10 * time.Second
	pollTimeout = 15 * time.Minute
)

// Client drives the DataForSEO on-page API: submit a crawl task, wait for it
// to finish, fetch the per-page results.
type Client struct {
	cfg    config.DataForSEOConfig
	client *http.Client
}

func NewClient(cfg config.DataForSEOConfig, client *http.Client) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("dataforseo credentials not configured")
	}
	return &Client{cfg: cfg, client: client}, nil
}

// PageResult is one crawled page, flattened from the API's nested shape.
// Pointer fields are nil when the crawler did not report the value.
type PageResult struct {
	URL         string
	StatusCode  *int
	Title       *string
	Description *string
	H1          []string
	WordCount   *int
	RawHTML     string
}

// CreateTask submits an on-page crawl for the target domain and returns the
// task id to poll.
func (c *Client) CreateTask(ctx context.Context, target string) (string, error) {
	payload := []map[string]interface{}{{
		"target":            target,
		"max_crawl_pages":   c.cfg.MaxCrawlPages,
		"load_resources":    false,
		"enable_javascript": false,
		"store_raw_html":    true,
	}}

	body, err := c.post(ctx, c.cfg.TaskPostURL, payload)
	if err != nil {
		return "", fmt.Errorf("task_post: %w", err)
	}

	var resp taskPostResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("task_post decode: %w", err)
	}

	if len(resp.Tasks) == 0 {
		return "", fmt.Errorf("task_post: empty task list")
	}
	task := resp.Tasks[0]
	if task.ID == "" {
		return "", fmt.Errorf("task_post: %s", task.StatusMessage)
	}

	log.Printf("dataforseo: task %s created for %s", task.ID, target)
	return task.ID, nil
}

// WaitForResults polls tasks_ready until the task shows up, then fetches its
// pages. Returns an error on context cancellation or when the poll deadline
// passes without the task completing.
func (c *Client) WaitForResults(ctx context.Context, taskID string) ([]PageResult, error) {
	deadline := time.Now().Add(pollTimeout)

	for {
		ready, err := c.taskReady(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if ready {
			break
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("task %s not ready after %s", taskID, pollTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollDelay):
		}
	}

	return c.fetchPages(ctx, taskID)
}

func (c *Client) taskReady(ctx context.Context, taskID string) (bool, error) {
	body, err := c.get(ctx, c.cfg.TasksReadyURL)
	if err != nil {
		return false, fmt.Errorf("tasks_ready: %w", err)
	}

	var resp tasksReadyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("tasks_ready decode: %w", err)
	}

	for _, task := range resp.Tasks {
		for _, r := range task.Result {
			if r.ID == taskID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (c *Client) fetchPages(ctx context.Context, taskID string) ([]PageResult, error) {
	payload := []map[string]interface{}{{
		"id":    taskID,
		"limit": c.cfg.MaxCrawlPages,
	}}

	body, err := c.post(ctx, c.cfg.PagesURL, payload)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}

	results, err := parsePages(body)
	if err != nil {
		return nil, fmt.Errorf("pages decode: %w", err)
	}

	log.Printf("dataforseo: task %s returned %d pages", taskID, len(results))
	return results, nil
}

// parsePages flattens the nested tasks/result/items response into PageResults.
func parsePages(body []byte) ([]PageResult, error) {
	var resp pagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	var results []PageResult
	for _, task := range resp.Tasks {
		for _, r := range task.Result {
			for _, item := range r.Items {
				if item.URL == "" {
					continue
				}
				results = append(results, PageResult{
					URL:         item.URL,
					StatusCode:  item.StatusCode,
					Title:       item.Meta.Title,
					Description: item.Meta.Description,
					H1:          item.Meta.HTags.H1,
					WordCount:   item.Meta.Content.PlainTextWordCount,
					RawHTML:     item.RawHTML,
				})
			}
		}
	}
	return results, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Login, c.cfg.Password)

	return c.do(req)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.Login, c.cfg.Password)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

type taskPostResponse struct {
	StatusCode int `json:"status_code"`
	Tasks      []struct {
		ID            string `json:"id"`
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
	} `json:"tasks"`
}

type tasksReadyResponse struct {
	Tasks []struct {
		Result []struct {
			ID string `json:"id"`
		} `json:"result"`
	} `json:"tasks"`
}

type pagesResponse struct {
	Tasks []struct {
		Result []struct {
			Items []pageItem `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

type pageItem struct {
	URL        string `json:"url"`
	StatusCode *int   `json:"status_code"`
	Meta       struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		HTags       struct {
			H1 []string `json:"h1"`
		} `json:"htags"`
		Content struct {
			PlainTextWordCount *int `json:"plain_text_word_count"`
		} `json:"content"`
	} `json:"meta"`
	RawHTML string `json:"raw_html"`
}
