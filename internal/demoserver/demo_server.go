package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DemoServer is a minimal stand-in for a Hugging Face mirror: it serves file
// listing pages with download anchors and the files behind them.
type DemoServer struct {
	cfg   Config
	repos map[string]Repo

	mu        sync.Mutex
	failLeft  int
	listings  int
	downloads int
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	repos := make(map[string]Repo)
	for _, r := range GetAllRepos() {
		repos[r.Path] = r
	}
	return &DemoServer{
		cfg:      cfg,
		repos:    repos,
		failLeft: cfg.FailFirst,
	}
}

// Handler returns the mirror's routes, for use with httptest.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Control panel
	mux.HandleFunc("/demo/control", s.controlPanelHandler)
	mux.HandleFunc("/demo/fail", s.setFailHandler)
	mux.HandleFunc("/demo/stats", s.statsHandler)

	// Repository pages
	mux.HandleFunc("/", s.repoHandler)
	return mux
}

// Start starts the demo server.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo mirror starting on http://localhost%s\n", addr)
	fmt.Printf("Control panel at http://localhost%s/demo/control\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// SetFailFirst makes the next n listing requests fail with 503.
func (s *DemoServer) SetFailFirst(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLeft = n
}

// Stats reports how many listing pages and files were served or refused.
func (s *DemoServer) Stats() (listings, downloads int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings, s.downloads
}

// repoHandler dispatches /<repo>/tree/<rev> and /<repo>/resolve/<rev>/<file>.
func (s *DemoServer) repoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/" {
		http.Redirect(w, r, "/demo/control", http.StatusFound)
		return
	}

	p := strings.Trim(r.URL.Path, "/")
	if repo, rest, ok := strings.Cut(p, "/tree/"); ok {
		s.listingHandler(w, repo, strings.Trim(rest, "/"))
		return
	}
	if repo, rest, ok := strings.Cut(p, "/resolve/"); ok {
		rev, file, found := strings.Cut(rest, "/")
		if !found {
			http.NotFound(w, r)
			return
		}
		s.fileHandler(w, repo, rev, file)
		return
	}
	http.NotFound(w, r)
}

func (s *DemoServer) files(repo, rev string) ([]RepoFile, bool) {
	rp, ok := s.repos[repo]
	if !ok {
		return nil, false
	}
	files, ok := rp.Revisions[rev]
	return files, ok
}

func (s *DemoServer) listingHandler(w http.ResponseWriter, repo, rev string) {
	s.mu.Lock()
	s.listings++
	fail := s.failLeft > 0
	if fail {
		s.failLeft--
	}
	s.mu.Unlock()

	if fail {
		http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	files, ok := s.files(repo, rev)
	if !ok {
		http.Error(w, "Repository not found", http.StatusNotFound)
		return
	}

	data := struct {
		Repo  string
		Rev   string
		Files []RepoFile
	}{Repo: repo, Rev: rev, Files: files}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := listingTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *DemoServer) fileHandler(w http.ResponseWriter, repo, rev, name string) {
	files, ok := s.files(repo, rev)
	if !ok {
		http.Error(w, "Repository not found", http.StatusNotFound)
		return
	}
	for _, f := range files {
		if f.Name == name {
			s.mu.Lock()
			s.downloads++
			s.mu.Unlock()

			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
			_, _ = w.Write([]byte(f.Content))
			return
		}
	}
	http.Error(w, "Entry not found", http.StatusNotFound)
}

// controlPanelHandler lists the served repositories.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	failLeft := s.failLeft
	s.mu.Unlock()

	repos := make([]Repo, 0, len(s.repos))
	for _, rp := range s.repos {
		repos = append(repos, rp)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Path < repos[j].Path })

	data := struct {
		Repos    []Repo
		FailLeft int
		Port     int
	}{Repos: repos, FailLeft: failLeft, Port: s.cfg.Port}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = controlTmpl.Execute(w, data)
}

// setFailHandler sets how many upcoming listing requests fail.
func (s *DemoServer) setFailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n, err := strconv.Atoi(r.FormValue("count"))
	if err != nil || n < 0 {
		http.Error(w, "Invalid count", http.StatusBadRequest)
		return
	}
	s.SetFailFirst(n)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"fail_first": n,
	})
}

// statsHandler returns request counters.
func (s *DemoServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	listings, downloads := s.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"listings":  listings,
		"downloads": downloads,
	})
}

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Repo}} at {{.Rev}}</title></head>
<body>
<header><h1><a href="/{{.Repo}}">{{.Repo}}</a></h1></header>
<nav><a href="/{{.Repo}}/tree/{{.Rev}}">Files and versions</a></nav>
<ul class="file-list">
{{range .Files}}<li>
  <a href="/{{$.Repo}}/blob/{{$.Rev}}/{{.Name}}">{{.Name}}</a>
  <a title="Download file" href="/{{$.Repo}}/resolve/{{$.Rev}}/{{.Name}}?download=true">download</a>
</li>
{{end}}</ul>
</body>
</html>
`))

var controlTmpl = template.Must(template.New("control").Parse(`<!DOCTYPE html>
<html>
<head><title>hfdl demo mirror</title></head>
<body>
<h1>hfdl demo mirror</h1>
<p>Listing requests left to fail: {{.FailLeft}}</p>
<form method="post" action="/demo/fail">
  <input type="number" name="count" min="0" value="0">
  <button type="submit">Fail next listings</button>
</form>
<h2>Repositories</h2>
<ul>
{{range .Repos}}<li>{{.Path}} ({{.Description}}):
  {{$p := .Path}}{{range $rev, $_ := .Revisions}}<a href="/{{$p}}/tree/{{$rev}}">{{$rev}}</a> {{end}}
</li>
{{end}}</ul>
<p>Try: <code>curl -OJ "http://localhost:8000/?hf_path=demo/tiny-gpt&amp;domain=http://localhost:{{.Port}}"</code></p>
</body>
</html>
`))
