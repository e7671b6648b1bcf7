package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docchat/docchat/internal/log"
)

func TestSearch_SearXNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "go concurrency" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		// Second result's snippet is below the quality floor and must be dropped.
		_, _ = w.Write([]byte(`{"results":[
			{"title":"Go Concurrency Patterns","url":"https://go.dev/talks","content":"Concurrency is not parallelism, a talk about goroutines and channels."},
			{"title":"Thin","url":"https://example.com/thin","content":"too short"},
			{"title":"Effective Go","url":"https://go.dev/doc/effective_go","content":"Goroutines are multiplexed onto multiple OS threads by the runtime."}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8, log.NewNop())
	results, err := client.Search(context.Background(), "go concurrency")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (short snippet filtered)", len(results))
	}
	if results[0].Title != "Go Concurrency Patterns" {
		t.Errorf("first title = %q", results[0].Title)
	}
	if results[1].URL != "https://go.dev/doc/effective_go" {
		t.Errorf("second url = %q", results[1].URL)
	}
}

func TestSearch_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var b strings.Builder
		b.WriteString(`{"results":[`)
		for i := 0; i < 20; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"title":"t","url":"https://example.com","content":"a snippet long enough to pass the quality floor"}`)
		}
		b.WriteString(`]}`)
		_, _ = w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 3, log.NewNop())
	results, err := client.Search(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want cap of 3", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("http://unreachable.invalid", 8, log.NewNop())
	results, err := client.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search on blank query: %v", err)
	}
	if results != nil {
		t.Errorf("got %v, want nil", results)
	}
}

func TestSearch_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 8, log.NewNop())
	if _, err := client.Search(context.Background(), "query"); err == nil {
		t.Error("expected an error for a 502 backend")
	}
}

func TestSearch_DuckDuckGoHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "weather today" {
			t.Errorf("query = %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<div class="result">
				<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fweather.example%2Ftoday">Weather Today</a>
				<a class="result__snippet">Current conditions and hourly forecast for your area.</a>
			</div>
			<div class="result">
				<a class="result__a" href="https://example.com/direct">Direct Link</a>
				<a class="result__snippet">short</a>
			</div>
		</body></html>`))
	}))
	defer srv.Close()

	client := NewClient("", 8, log.NewNop())
	client.ddgURL = srv.URL

	results, err := client.Search(context.Background(), "weather today")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (short snippet filtered)", len(results))
	}
	if results[0].Title != "Weather Today" {
		t.Errorf("title = %q", results[0].Title)
	}
	if results[0].URL != "https://weather.example/today" {
		t.Errorf("redirect not unwrapped: %q", results[0].URL)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	results := []Result{
		{Title: "First", URL: "https://a.example", Snippet: "first snippet"},
		{Title: "Second", URL: "https://b.example", Snippet: "second snippet"},
	}
	got := Format(results)

	if !strings.HasPrefix(got, "### WEB SEARCH RESULTS (Current Information):\n") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "1. **First**\n   first snippet\n   Source: https://a.example") {
		t.Errorf("first entry malformed:\n%s", got)
	}
	if !strings.Contains(got, "2. **Second**") {
		t.Errorf("second entry malformed:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\n") {
		t.Error("formatted block should end with a blank line")
	}
}
