package pagespeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"seo_auditor/config"
)

// Client calls the PageSpeed Insights v5 API for one URL at a time.
type Client struct {
	cfg    config.PageSpeedConfig
	client *http.Client
}

func NewClient(cfg config.PageSpeedConfig, client *http.Client) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("pagespeed api key not configured")
	}
	return &Client{cfg: cfg, client: client}, nil
}

// Metrics holds the Lighthouse values the audit rules consume. Nil means the
// audit did not report the value.
type Metrics struct {
	PerformanceScore *float64 // 0-100
	LCP              *float64 // ms
	CLS              *float64
	TBT              *float64 // ms
}

// Fetch runs PageSpeed for a page URL with the given strategy (mobile or
// desktop) and extracts the performance category score plus the three
// metric audits.
func (c *Client) Fetch(ctx context.Context, pageURL, strategy string) (*Metrics, error) {
	endpoint := fmt.Sprintf("%s?url=%s&strategy=%s&category=performance&key=%s",
		c.cfg.Endpoint, url.QueryEscape(pageURL), strategy, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}

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
		return nil, fmt.Errorf("pagespeed error %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return parseMetrics(body)
}

// parseMetrics pulls the performance score and metric audits out of the
// lighthouseResult. The category score arrives as 0-1 and is scaled to 0-100.
func parseMetrics(body []byte) (*Metrics, error) {
	var resp pagespeedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	m := &Metrics{}

	if perf := resp.LighthouseResult.Categories.Performance; perf.Score != nil {
		score := *perf.Score * 100
		m.PerformanceScore = &score
	}

	audits := resp.LighthouseResult.Audits
	m.LCP = audits["largest-contentful-paint"].NumericValue
	m.CLS = audits["cumulative-layout-shift"].NumericValue
	m.TBT = audits["total-blocking-time"].NumericValue

	return m, nil
}

type pagespeedResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue *float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
