package audit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"seo_auditor/config"
)

// Finding is one rule firing against one URL. Details carries human-readable
// or JSON evidence for the reporting surface.
type Finding struct {
	URLID   int64
	Code    string
	Details *string
}

type urlRule struct {
	code  string
	check func(s *PageSignals, p *config.Policy) (bool, string)
}

// urlRules run per URL in this exact order. Evaluation order is part of the
// determinism contract: same input, same findings, same sequence.
var urlRules = []urlRule{
	{"CRAWL_ERROR_4XX", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.StatusCode == nil {
			return false, ""
		}
		return *s.StatusCode >= 400 && *s.StatusCode <= 499, fmt.Sprintf("status code %d", deref(s.StatusCode))
	}},
	{"CRAWL_ERROR_5XX", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.StatusCode == nil {
			return false, ""
		}
		return *s.StatusCode >= 500 && *s.StatusCode <= 599, fmt.Sprintf("status code %d", deref(s.StatusCode))
	}},
	{"REDIRECT_3XX", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.StatusCode == nil {
			return false, ""
		}
		return *s.StatusCode >= 300 && *s.StatusCode <= 399, fmt.Sprintf("status code %d", deref(s.StatusCode))
	}},
	{"TITLE_MISSING", func(s *PageSignals, p *config.Policy) (bool, string) {
		// Fires regardless of status code: a 404 with no title still
		// reports both the error and the missing title.
		return s.Title == nil || strings.TrimSpace(*s.Title) == "", ""
	}},
	{"TITLE_TOO_LONG", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.TitleLength == nil || *s.TitleLength == 0 {
			return false, ""
		}
		return *s.TitleLength > p.TitleMaxLength,
			fmt.Sprintf("title length %d exceeds %d", *s.TitleLength, p.TitleMaxLength)
	}},
	{"TITLE_TOO_SHORT", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.TitleLength == nil || *s.TitleLength == 0 {
			return false, ""
		}
		return *s.TitleLength < p.TitleMinLength,
			fmt.Sprintf("title length %d below %d", *s.TitleLength, p.TitleMinLength)
	}},
	{"META_DESCRIPTION_MISSING", func(s *PageSignals, p *config.Policy) (bool, string) {
		if !isContentPage(s) {
			return false, ""
		}
		return s.MetaDescription == nil || strings.TrimSpace(*s.MetaDescription) == "", ""
	}},
	{"META_DESCRIPTION_TOO_LONG", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.MetaDescLength == nil || *s.MetaDescLength == 0 {
			return false, ""
		}
		return *s.MetaDescLength > p.MetaDescMaxLength,
			fmt.Sprintf("meta description length %d exceeds %d", *s.MetaDescLength, p.MetaDescMaxLength)
	}},
	{"META_DESCRIPTION_TOO_SHORT", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.MetaDescLength == nil || *s.MetaDescLength == 0 {
			return false, ""
		}
		return *s.MetaDescLength < p.MetaDescMinLength,
			fmt.Sprintf("meta description length %d below %d", *s.MetaDescLength, p.MetaDescMinLength)
	}},
	{"H1_MISSING", func(s *PageSignals, p *config.Policy) (bool, string) {
		if !isContentPage(s) {
			return false, ""
		}
		return s.H1 == nil || strings.TrimSpace(*s.H1) == "", ""
	}},
	{"CONTENT_EMPTY", func(s *PageSignals, p *config.Policy) (bool, string) {
		if !isContentPage(s) {
			return false, ""
		}
		if s.WordCount == nil {
			// A confirmed 200 with no extracted text counts as empty;
			// unknown status abstains.
			return s.StatusCode != nil && *s.StatusCode == 200, ""
		}
		return *s.WordCount == 0, ""
	}},
	{"CONTENT_THIN", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.WordCount == nil || !isContentPage(s) {
			return false, ""
		}
		return *s.WordCount > 0 && *s.WordCount < p.ThinContentWords,
			fmt.Sprintf("word count %d below %d", deref(s.WordCount), p.ThinContentWords)
	}},
	{"URL_TOO_LONG", func(s *PageSignals, p *config.Policy) (bool, string) {
		return len(s.URL) > p.URLMaxLength,
			fmt.Sprintf("url length %d exceeds %d", len(s.URL), p.URLMaxLength)
	}},
	{"URL_TOO_MANY_PARAMS", func(s *PageSignals, p *config.Policy) (bool, string) {
		n := queryParamCount(s.URL)
		return n > p.URLMaxQueryParams,
			fmt.Sprintf("%d query parameters exceeds %d", n, p.URLMaxQueryParams)
	}},
	{"URL_UPPERCASE", func(s *PageSignals, p *config.Policy) (bool, string) {
		path := urlPath(s.URL)
		return path != strings.ToLower(path), ""
	}},
	{"URL_UNDERSCORES", func(s *PageSignals, p *config.Policy) (bool, string) {
		return strings.Contains(urlPath(s.URL), "_"), ""
	}},
	{"URL_SPECIAL_CHARS", func(s *PageSignals, p *config.Policy) (bool, string) {
		return hasUnsafePathChars(urlPath(s.URL)), ""
	}},
	{"TOO_MANY_LINKS", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.OutboundLinks == nil {
			return false, ""
		}
		return *s.OutboundLinks > p.MaxOutboundLinks,
			fmt.Sprintf("%d outbound links exceeds %d", *s.OutboundLinks, p.MaxOutboundLinks)
	}},
	{"ORPHAN_PAGE", func(s *PageSignals, p *config.Policy) (bool, string) {
		// Abstains without link data; requires a confirmed 200 page.
		if s.InboundLinks == nil || s.StatusCode == nil || *s.StatusCode != 200 {
			return false, ""
		}
		return *s.InboundLinks == 0, "no internal links point at this page"
	}},
	{"PERF_LCP_SLOW", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.LCP == nil {
			return false, ""
		}
		return *s.LCP > p.LCPThresholdMS,
			fmt.Sprintf("LCP %.0fms exceeds %.0fms", *s.LCP, p.LCPThresholdMS)
	}},
	{"PERF_CLS_HIGH", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.CLS == nil {
			return false, ""
		}
		return *s.CLS > p.CLSThreshold,
			fmt.Sprintf("CLS %.3f exceeds %.3f", *s.CLS, p.CLSThreshold)
	}},
	{"PERF_TBT_HIGH", func(s *PageSignals, p *config.Policy) (bool, string) {
		if s.TBT == nil {
			return false, ""
		}
		return *s.TBT > p.TBTThresholdMS,
			fmt.Sprintf("TBT %.0fms exceeds %.0fms", *s.TBT, p.TBTThresholdMS)
	}},
}

// Evaluate runs every enabled rule over the crawl's signals. Callers pass
// signals ordered by URL id ascending; output order follows input order with
// per-URL rules first, then cross-URL groupings.
func Evaluate(signals []PageSignals, p *config.Policy) []Finding {
	var findings []Finding

	for i := range signals {
		s := &signals[i]
		for _, r := range urlRules {
			if !p.RuleEnabled(r.code) {
				continue
			}
			fired, details := r.check(s, p)
			if !fired {
				continue
			}
			findings = append(findings, Finding{URLID: s.URLID, Code: r.code, Details: optional(details)})
		}
	}

	findings = append(findings, duplicateFindings(signals, p)...)
	findings = append(findings, protocolFindings(signals, p)...)

	return findings
}

// duplicateFindings groups URLs sharing a normalized field value and flags
// every member of each group of two or more. Details lists the siblings so
// the report shows what collided with what.
func duplicateFindings(signals []PageSignals, p *config.Policy) []Finding {
	type dupRule struct {
		code string
		key  func(s *PageSignals) string
	}

	rules := []dupRule{
		{"TITLE_DUPLICATE", func(s *PageSignals) string { return normalizeText(s.Title) }},
		{"META_DESCRIPTION_DUPLICATE", func(s *PageSignals) string { return normalizeText(s.MetaDescription) }},
		{"H1_DUPLICATE", func(s *PageSignals) string { return normalizeText(s.H1) }},
		{"CONTENT_DUPLICATE", contentFingerprint},
	}

	var findings []Finding
	for _, r := range rules {
		if !p.RuleEnabled(r.code) {
			continue
		}

		groups := make(map[string][]*PageSignals)
		var order []string
		for i := range signals {
			s := &signals[i]
			key := r.key(s)
			if key == "" {
				continue
			}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], s)
		}

		for _, key := range order {
			members := groups[key]
			if len(members) < 2 {
				continue
			}
			for _, s := range members {
				findings = append(findings, Finding{
					URLID:   s.URLID,
					Code:    r.code,
					Details: siblingDetails(s, members),
				})
			}
		}
	}
	return findings
}

// protocolFindings flags plain-HTTP URLs on a site that serves HTTPS.
func protocolFindings(signals []PageSignals, p *config.Policy) []Finding {
	if !p.RuleEnabled("HTTP_ON_HTTPS_SITE") {
		return nil
	}

	hasHTTPS := false
	for i := range signals {
		if strings.HasPrefix(signals[i].URL, "https://") {
			hasHTTPS = true
			break
		}
	}
	if !hasHTTPS {
		return nil
	}

	var findings []Finding
	for i := range signals {
		s := &signals[i]
		if strings.HasPrefix(s.URL, "http://") {
			d := "served over http on a site that uses https"
			findings = append(findings, Finding{URLID: s.URLID, Code: "HTTP_ON_HTTPS_SITE", Details: &d})
		}
	}
	return findings
}

// isContentPage limits content rules to pages that actually served content.
// Error and redirect responses get their own findings instead.
func isContentPage(s *PageSignals) bool {
	return s.StatusCode == nil || (*s.StatusCode >= 200 && *s.StatusCode <= 299)
}

// normalizeText trims and collapses whitespace, preserving case: "Home" and
// "home" are distinct titles.
func normalizeText(s *string) string {
	if s == nil {
		return ""
	}
	return strings.Join(strings.Fields(*s), " ")
}

// contentFingerprint stands in for full-body comparison: two pages whose
// title, meta description, H1, and word count all coincide are treated as
// duplicates. Any missing component abstains.
func contentFingerprint(s *PageSignals) string {
	if s.Title == nil || s.MetaDescription == nil || s.H1 == nil || s.WordCount == nil {
		return ""
	}
	t, m, h := normalizeText(s.Title), normalizeText(s.MetaDescription), normalizeText(s.H1)
	if t == "" && m == "" && h == "" {
		return ""
	}
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d", t, m, h, *s.WordCount)
}

func siblingDetails(self *PageSignals, members []*PageSignals) *string {
	siblings := make([]string, 0, len(members)-1)
	for _, m := range members {
		if m.URLID != self.URLID {
			siblings = append(siblings, m.URL)
		}
	}
	data, err := json.Marshal(map[string][]string{"duplicate_of": siblings})
	if err != nil {
		return nil
	}
	d := string(data)
	return &d
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func queryParamCount(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	n := 0
	for _, vs := range u.Query() {
		n += len(vs)
	}
	return n
}

func hasUnsafePathChars(path string) bool {
	for _, c := range path {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '/', c == '-', c == '_', c == '.', c == '~', c == '%':
		default:
			return true
		}
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
