package uistatic

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestHandlerServesIndexAtRoot(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{`id="question"`, `"/v1/ask"`, `question.trim() === ""`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index.html missing %q", want)
		}
	}
}

func TestHandlerFallsBackToIndexForUnknownPaths(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/history/42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<title>cinequery</title>") {
		t.Fatal("expected index.html fallback")
	}
}

func TestHandlerServesAssetsAndRejectsMissingOnes(t *testing.T) {
	pages := fstest.MapFS{
		"index.html": {Data: []byte("<title>cinequery</title>")},
		"app.css":    {Data: []byte("body{}")},
	}
	h := New(pages)

	css := httptest.NewRecorder()
	h.ServeHTTP(css, httptest.NewRequest(http.MethodGet, "/app.css", nil))
	if css.Code != http.StatusOK || css.Body.String() != "body{}" {
		t.Fatalf("app.css status = %d body=%q", css.Code, css.Body.String())
	}

	missing := httptest.NewRecorder()
	h.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing.js status = %d", missing.Code)
	}

	index := httptest.NewRecorder()
	h.ServeHTTP(index, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if index.Code != http.StatusOK || index.Header().Get("Cache-Control") != "no-cache" {
		t.Fatalf("index status = %d headers=%v", index.Code, index.Header())
	}
}
