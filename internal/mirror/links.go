package mirror

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DownloadSuffix marks file anchors on a listing page.
const DownloadSuffix = "?download=true"

// ExtractDownloadLinks returns the download URLs found in a listing page, in
// page order without duplicates. Relative hrefs are resolved against base.
func ExtractDownloadLinks(base *url.URL, body io.Reader) ([]string, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	links := make([]string, 0)
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasSuffix(href, DownloadSuffix) {
			return
		}

		ref, err := url.Parse(strings.TrimSuffix(href, DownloadSuffix))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		key := canonicalLink(resolved)
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, resolved.String())
	})

	return links, nil
}
