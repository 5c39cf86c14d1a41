package audit

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkCounts is the internal-link degree of one crawled page.
type LinkCounts struct {
	Inbound  int
	Outbound int
}

// BuildLinkGraph extracts internal links from raw page HTML and returns
// per-URL in/out degrees. Keys of pages are crawled URLs; only links whose
// resolved target is itself a crawled URL count, so the graph never includes
// pages the crawl did not see. Pages with unparseable HTML contribute no
// edges but stay in the result.
func BuildLinkGraph(pages map[string]string) map[string]LinkCounts {
	// normalized form -> crawled URL
	index := make(map[string]string, len(pages))
	for pageURL := range pages {
		index[normalizeURL(pageURL)] = pageURL
	}

	counts := make(map[string]LinkCounts, len(pages))
	for pageURL := range pages {
		counts[pageURL] = LinkCounts{}
	}

	for pageURL, html := range pages {
		if html == "" {
			continue
		}

		base, err := url.Parse(pageURL)
		if err != nil {
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Printf("linkgraph: parse %s: %v", pageURL, err)
			continue
		}

		// inbound edges dedup per source page so repeated nav links
		// count once
		seen := make(map[string]bool)

		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			target := resolveInternal(base, href)
			if target == "" {
				return
			}

			crawled, ok := index[target]
			if !ok || crawled == pageURL {
				return
			}

			c := counts[pageURL]
			c.Outbound++
			counts[pageURL] = c

			if !seen[crawled] {
				seen[crawled] = true
				tc := counts[crawled]
				tc.Inbound++
				counts[crawled] = tc
			}
		})
	}

	return counts
}

// resolveInternal resolves href against the page URL and returns its
// normalized form when the target stays on the same host, "" otherwise.
func resolveInternal(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	if !strings.EqualFold(abs.Host, base.Host) {
		return ""
	}

	return normalizeURL(abs.String())
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}
