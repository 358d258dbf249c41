package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newSearchServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			http.Error(w, "missing q", http.StatusBadRequest)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "heavy-test" {
			http.Error(w, "bad agent "+ua, http.StatusForbidden)
			return
		}
		target := url.QueryEscape(srv.URL + "/page/two")
		fmt.Fprintf(w, `<html><body>
<div class="result"><h2><a class="result__a" href="%s/page/one">First  <b>Result</b></a></h2>
<a class="result__snippet" href="#">Snippet one</a></div>
<div class="result"><h2><a class="result__a" href="//duckduckgo.com/l/?uddg=%s&rut=abc">Second</a></h2>
<a class="result__snippet" href="#">Snippet two</a></div>
<div class="result"><h2><a class="result__a" href="%s/page/missing">Third</a></h2>
<a class="result__snippet" href="#">Snippet three</a></div>
</body></html>`, srv.URL, target, srv.URL)
	})
	mux.HandleFunc("/page/one", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>x</title><style>body{}</style></head>
<body><script>var a = 1;</script><p>Alpha   beta</p><p>gamma</p></body></html>`)
	})
	mux.HandleFunc("/page/two", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>`+strings.Repeat("z", 50)+`</p></body></html>`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchWeb(t *testing.T) {
	srv := newSearchServer(t)
	tool := NewSearchWeb(SearchConfig{
		Endpoint:     srv.URL + "/html/",
		UserAgent:    "heavy-test",
		Truncation:   20,
		FetchContent: true,
		Client:       srv.Client(),
	})

	out, err := tool.Execute(context.Background(), map[string]any{"query": "go modules"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.(map[string]any)
	if got["query"] != "go modules" {
		t.Errorf("query = %v", got["query"])
	}
	hits := got["results"].([]SearchHit)
	if len(hits) != 3 {
		t.Fatalf("got %d results, want 3", len(hits))
	}

	if hits[0].Title != "First Result" || hits[0].Snippet != "Snippet one" {
		t.Errorf("hit 0 = %+v", hits[0])
	}
	if hits[0].Content != "Alpha beta gamma" {
		t.Errorf("hit 0 content = %q", hits[0].Content)
	}
	if hits[1].URL != srv.URL+"/page/two" {
		t.Errorf("redirect not unwrapped: %s", hits[1].URL)
	}
	if hits[1].Content != strings.Repeat("z", 20)+"..." {
		t.Errorf("content not truncated: %q", hits[1].Content)
	}
	if !strings.HasPrefix(hits[2].Content, "Could not fetch content") {
		t.Errorf("hit 2 content = %q", hits[2].Content)
	}
}

func TestSearchWebMaxResults(t *testing.T) {
	srv := newSearchServer(t)
	tool := NewSearchWeb(SearchConfig{
		Endpoint:  srv.URL + "/html/",
		UserAgent: "heavy-test",
		Client:    srv.Client(),
	})

	out, err := tool.Execute(context.Background(), map[string]any{"query": "q", "max_results": float64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hits := out.(map[string]any)["results"].([]SearchHit)
	if len(hits) != 2 {
		t.Fatalf("got %d results, want 2", len(hits))
	}
	if hits[1].Snippet != "Snippet two" {
		t.Errorf("snippet for last hit = %q", hits[1].Snippet)
	}
	if hits[0].Content != "" {
		t.Errorf("content fetched with FetchContent disabled: %q", hits[0].Content)
	}
}

func TestSearchWebFailure(t *testing.T) {
	srv := newSearchServer(t)
	tool := NewSearchWeb(SearchConfig{
		Endpoint:  srv.URL + "/html/",
		UserAgent: "someone-else",
		Client:    srv.Client(),
	})

	_, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	if err == nil || !strings.HasPrefix(err.Error(), "Search failed") {
		t.Fatalf("error = %v, want Search failed", err)
	}

	_, err = tool.Execute(context.Background(), map[string]any{"query": "  "})
	if err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestResolveResultURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/a":                                  "https://example.com/a",
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&rut=1": "https://go.dev/",
	}
	for in, want := range tests {
		if got := resolveResultURL(in); got != want {
			t.Errorf("resolveResultURL(%q) = %q, want %q", in, got, want)
		}
	}
}
