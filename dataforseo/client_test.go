package dataforseo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"seo_auditor/config"
)

func TestParsePages(t *testing.T) {
	body, err := os.ReadFile("testdata/pages.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	results, err := parsePages(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// the item with an empty url is dropped
	if len(results) != 2 {
		t.Fatalf("want 2 pages, got %d", len(results))
	}

	home := results[0]
	if home.URL != "https://example.com/" {
		t.Fatalf("unexpected url %s", home.URL)
	}
	if home.StatusCode == nil || *home.StatusCode != 200 {
		t.Fatalf("status: want 200, got %v", home.StatusCode)
	}
	if home.Title == nil || *home.Title != "Example Domain" {
		t.Fatalf("title: got %v", home.Title)
	}
	if home.Description == nil {
		t.Fatal("description: want value, got nil")
	}
	if len(home.H1) != 2 || home.H1[0] != "Example Domain" {
		t.Fatalf("h1: got %v", home.H1)
	}
	if home.WordCount == nil || *home.WordCount != 347 {
		t.Fatalf("word count: got %v", home.WordCount)
	}
	if home.RawHTML == "" {
		t.Fatal("raw html missing")
	}

	broken := results[1]
	if broken.StatusCode == nil || *broken.StatusCode != 404 {
		t.Fatalf("broken status: got %v", broken.StatusCode)
	}
	if broken.Title != nil || broken.Description != nil || broken.WordCount != nil {
		t.Fatal("absent metadata must stay nil")
	}
	if len(broken.H1) != 0 {
		t.Fatalf("broken h1: got %v", broken.H1)
	}
}

func testConfig(srvURL string) config.DataForSEOConfig {
	return config.DataForSEOConfig{
		Login:         "login",
		Password:      "password",
		TaskPostURL:   srvURL + "/task_post",
		TasksReadyURL: srvURL + "/tasks_ready",
		PagesURL:      srvURL + "/pages",
		MaxCrawlPages: 100,
	}
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "login" || pass != "password" {
			t.Errorf("missing or wrong basic auth")
		}

		var payload []map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil || len(payload) != 1 {
			t.Errorf("bad request body: %s", body)
		}
		if target := payload[0]["target"]; target != "example.com" {
			t.Errorf("target: got %v", target)
		}
		if pages := payload[0]["max_crawl_pages"]; pages != float64(100) {
			t.Errorf("max_crawl_pages: got %v", pages)
		}

		w.Write([]byte(`{"status_code":20000,"tasks":[{"id":"task-123","status_code":20100,"status_message":"Task Created."}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	id, err := client.CreateTask(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if id != "task-123" {
		t.Fatalf("task id: got %s", id)
	}
}

func TestCreateTaskAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":40000,"tasks":[{"id":"","status_code":40501,"status_message":"Invalid Field."}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.CreateTask(context.Background(), "example.com"); err == nil {
		t.Fatal("expected error for rejected task")
	}
}

func TestWaitForResultsReadyImmediately(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks_ready":
			w.Write([]byte(`{"tasks":[{"result":[{"id":"task-123"}]}]}`))
		case "/pages":
			body, _ := os.ReadFile("testdata/pages.json")
			w.Write(body)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	pages, err := client.WaitForResults(context.Background(), "task-123")
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("want 2 pages, got %d", len(pages))
	}
}

func TestWaitForResultsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// task never shows up
		w.Write([]byte(`{"tasks":[]}`))
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.WaitForResults(ctx, "task-123"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(config.DataForSEOConfig{}, http.DefaultClient); err == nil {
		t.Fatal("expected error without credentials")
	}
}
