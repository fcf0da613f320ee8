package mirror

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

const (
	DefaultDomain   = "hf-mirror.com"
	DefaultRevision = "main"
)

var (
	// ErrInvalidRepoPath is returned for empty or malformed repository paths.
	ErrInvalidRepoPath = errors.New("invalid repository path: expected owner/name or datasets/owner/name")

	// ErrInvalidDomain is returned when the mirror domain cannot form a URL.
	ErrInvalidDomain = errors.New("invalid mirror domain")

	// ErrInvalidRevision is returned for revisions containing path tricks or spaces.
	ErrInvalidRevision = errors.New("invalid revision")
)

// repoKinds are the optional first segment of a three-segment repository path.
var repoKinds = map[string]bool{
	"datasets": true,
	"models":   true,
	"spaces":   true,
}

// Target identifies one repository revision on one mirror.
type Target struct {
	// Scheme is https unless the domain was given with an explicit http:// prefix.
	Scheme   string `json:"-"`
	Domain   string `json:"domain"`
	RepoPath string `json:"hf_path"`
	Revision string `json:"revision"`
}

// NewTarget validates and normalises its inputs. Empty domain and revision fall
// back to DefaultDomain and DefaultRevision.
func NewTarget(domain, repoPath, revision string) (Target, error) {
	scheme, host, err := normalizeDomain(domain)
	if err != nil {
		return Target{}, err
	}

	repo, err := normalizeRepoPath(repoPath)
	if err != nil {
		return Target{}, err
	}

	revision = strings.TrimSpace(revision)
	if revision == "" {
		revision = DefaultRevision
	}
	if strings.ContainsAny(revision, " \t\n/?#") || revision == "." || revision == ".." {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidRevision, revision)
	}

	return Target{Scheme: scheme, Domain: host, RepoPath: repo, Revision: revision}, nil
}

func normalizeDomain(domain string) (scheme, host string, err error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "https", DefaultDomain, nil
	}

	scheme = "https"
	switch {
	case strings.HasPrefix(domain, "https://"):
		domain = strings.TrimPrefix(domain, "https://")
	case strings.HasPrefix(domain, "http://"):
		scheme = "http"
		domain = strings.TrimPrefix(domain, "http://")
	}
	domain = strings.TrimRight(domain, "/")

	if domain == "" || strings.ContainsAny(domain, "/ \t\n?#@") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	u, err := url.Parse(scheme + "://" + domain + "/")
	if err != nil || u.Host != domain {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	host, err = normalizeHost(scheme, domain)
	if err != nil || host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	return scheme, host, nil
}

func normalizeRepoPath(repoPath string) (string, error) {
	repoPath = strings.Trim(strings.TrimSpace(repoPath), "/")
	if repoPath == "" {
		return "", ErrInvalidRepoPath
	}

	segments := strings.Split(repoPath, "/")
	switch len(segments) {
	case 2:
	case 3:
		if !repoKinds[segments[0]] {
			return "", fmt.Errorf("%w: %q", ErrInvalidRepoPath, repoPath)
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRepoPath, repoPath)
	}

	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, " \t\n?#%\\'\"") {
			return "", fmt.Errorf("%w: %q", ErrInvalidRepoPath, repoPath)
		}
	}
	return repoPath, nil
}

// BaseURL is the mirror root, always ending in "/".
func (t Target) BaseURL() *url.URL {
	scheme := t.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: t.Domain, Path: "/"}
}

// ListingURL is the page that lists the repository's files.
func (t Target) ListingURL() string {
	u := t.BaseURL()
	u.Path = "/" + path.Join(t.RepoPath, "tree", t.Revision)
	return u.String()
}

// DirName is the directory the generated script downloads into.
func (t Target) DirName() string {
	return path.Base(t.RepoPath)
}

// CacheKey identifies the listing of this target.
func (t Target) CacheKey() string {
	return t.BaseURL().String() + t.RepoPath + "@" + t.Revision
}

func (t Target) String() string {
	return t.Domain + "/" + t.RepoPath + "@" + t.Revision
}
