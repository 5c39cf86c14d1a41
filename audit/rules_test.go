package audit

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"

	"seo_auditor/config"
	"seo_auditor/models"
)

func testPolicy() *config.Policy {
	p := config.DefaultPolicy()
	return &p
}

func intPtr(n int) *int         { return &n }
func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

// healthyPage returns signals that fire no rules.
func healthyPage(id int64, url string) PageSignals {
	s := PageSignals{
		URLID:           id,
		URL:             url,
		StatusCode:      intPtr(200),
		Title:           strPtr("A perfectly sized page title for testing"),
		MetaDescription: strPtr("A meta description long enough to clear the minimum length threshold of one hundred and twenty characters, but not so long it overflows."),
		H1:              strPtr("Welcome"),
		WordCount:       intPtr(500),
	}
	n := len([]rune(*s.Title))
	s.TitleLength = &n
	m := len([]rune(*s.MetaDescription))
	s.MetaDescLength = &m
	return s
}

func codesFor(findings []Finding, urlID int64) []string {
	var codes []string
	for _, f := range findings {
		if f.URLID == urlID {
			codes = append(codes, f.Code)
		}
	}
	return codes
}

func hasCode(findings []Finding, urlID int64, code string) bool {
	for _, f := range findings {
		if f.URLID == urlID && f.Code == code {
			return true
		}
	}
	return false
}

func TestHealthyPageFiresNothing(t *testing.T) {
	findings := Evaluate([]PageSignals{healthyPage(1, "https://example.com/about")}, testPolicy())
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
}

func TestStatusCodeRules(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{404, "CRAWL_ERROR_4XX"},
		{400, "CRAWL_ERROR_4XX"},
		{500, "CRAWL_ERROR_5XX"},
		{503, "CRAWL_ERROR_5XX"},
		{301, "REDIRECT_3XX"},
		{302, "REDIRECT_3XX"},
	}

	for _, tc := range cases {
		s := healthyPage(1, "https://example.com/p")
		s.StatusCode = intPtr(tc.status)
		findings := Evaluate([]PageSignals{s}, testPolicy())
		if !hasCode(findings, 1, tc.code) {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.code, codesFor(findings, 1))
		}
	}
}

func TestStatusRulesAbstainOnNil(t *testing.T) {
	s := healthyPage(1, "https://example.com/p")
	s.StatusCode = nil
	findings := Evaluate([]PageSignals{s}, testPolicy())
	for _, code := range []string{"CRAWL_ERROR_4XX", "CRAWL_ERROR_5XX", "REDIRECT_3XX"} {
		if hasCode(findings, 1, code) {
			t.Fatalf("expected %s to abstain on nil status", code)
		}
	}
}

func TestTitleRules(t *testing.T) {
	missing := healthyPage(1, "https://example.com/a")
	missing.Title = nil
	missing.TitleLength = nil

	long := healthyPage(2, "https://example.com/b")
	long.Title = strPtr("An extremely long page title that keeps going well past the sixty character display limit")
	n := len([]rune(*long.Title))
	long.TitleLength = &n

	short := healthyPage(3, "https://example.com/c")
	short.Title = strPtr("Hi there")
	m := len([]rune(*short.Title))
	short.TitleLength = &m

	findings := Evaluate([]PageSignals{missing, long, short}, testPolicy())

	if !hasCode(findings, 1, "TITLE_MISSING") {
		t.Fatalf("expected TITLE_MISSING for url 1, got %v", codesFor(findings, 1))
	}
	if !hasCode(findings, 2, "TITLE_TOO_LONG") {
		t.Fatalf("expected TITLE_TOO_LONG for url 2, got %v", codesFor(findings, 2))
	}
	if !hasCode(findings, 3, "TITLE_TOO_SHORT") {
		t.Fatalf("expected TITLE_TOO_SHORT for url 3, got %v", codesFor(findings, 3))
	}
	if hasCode(findings, 1, "TITLE_TOO_SHORT") {
		t.Fatal("missing title must not also count as too short")
	}
}

func TestErrorPageRules(t *testing.T) {
	s := PageSignals{
		URLID:      1,
		URL:        "https://example.com/gone",
		StatusCode: intPtr(404),
	}
	findings := Evaluate([]PageSignals{s}, testPolicy())

	if !hasCode(findings, 1, "CRAWL_ERROR_4XX") {
		t.Fatalf("expected CRAWL_ERROR_4XX, got %v", codesFor(findings, 1))
	}
	if !hasCode(findings, 1, "TITLE_MISSING") {
		t.Fatalf("a missing title is reported even on an error page, got %v", codesFor(findings, 1))
	}
	for _, code := range []string{"META_DESCRIPTION_MISSING", "H1_MISSING", "CONTENT_EMPTY", "CONTENT_THIN"} {
		if hasCode(findings, 1, code) {
			t.Fatalf("%s must not fire on a 404 page", code)
		}
	}
}

func TestMetaDescriptionLengthRules(t *testing.T) {
	short := healthyPage(1, "https://example.com/a")
	short.MetaDescription = strPtr("Too short to be useful.")
	n := len([]rune(*short.MetaDescription))
	short.MetaDescLength = &n

	findings := Evaluate([]PageSignals{short}, testPolicy())
	if !hasCode(findings, 1, "META_DESCRIPTION_TOO_SHORT") {
		t.Fatalf("expected META_DESCRIPTION_TOO_SHORT, got %v", codesFor(findings, 1))
	}
}

func TestContentRules(t *testing.T) {
	empty := healthyPage(1, "https://example.com/a")
	empty.WordCount = intPtr(0)

	thin := healthyPage(2, "https://example.com/b")
	thin.WordCount = intPtr(50)

	// null word count on a confirmed 200 counts as empty
	unextracted := healthyPage(3, "https://example.com/c")
	unextracted.WordCount = nil

	// null word count with unknown status abstains
	unknown := healthyPage(4, "https://example.com/d")
	unknown.WordCount = nil
	unknown.StatusCode = nil

	findings := Evaluate([]PageSignals{empty, thin, unextracted, unknown}, testPolicy())

	if !hasCode(findings, 1, "CONTENT_EMPTY") {
		t.Fatalf("expected CONTENT_EMPTY, got %v", codesFor(findings, 1))
	}
	if hasCode(findings, 1, "CONTENT_THIN") {
		t.Fatal("empty content must not also count as thin")
	}
	if !hasCode(findings, 2, "CONTENT_THIN") {
		t.Fatalf("expected CONTENT_THIN, got %v", codesFor(findings, 2))
	}
	if !hasCode(findings, 3, "CONTENT_EMPTY") {
		t.Fatalf("null word count on a 200 page must count as empty, got %v", codesFor(findings, 3))
	}
	if hasCode(findings, 3, "CONTENT_THIN") {
		t.Fatal("null word count must not count as thin")
	}
	if hasCode(findings, 4, "CONTENT_THIN") || hasCode(findings, 4, "CONTENT_EMPTY") {
		t.Fatal("content rules must abstain when both word count and status are unknown")
	}
}

func TestPerformanceRules(t *testing.T) {
	slow := healthyPage(1, "https://example.com/a")
	slow.LCP = f64Ptr(4200)
	slow.CLS = f64Ptr(0.35)
	slow.TBT = f64Ptr(750)

	noData := healthyPage(2, "https://example.com/b")

	findings := Evaluate([]PageSignals{slow, noData}, testPolicy())

	for _, code := range []string{"PERF_LCP_SLOW", "PERF_CLS_HIGH", "PERF_TBT_HIGH"} {
		if !hasCode(findings, 1, code) {
			t.Fatalf("expected %s for url 1, got %v", code, codesFor(findings, 1))
		}
		if hasCode(findings, 2, code) {
			t.Fatalf("%s must abstain without metrics", code)
		}
	}
}

func TestURLShapeRules(t *testing.T) {
	cases := []struct {
		url  string
		code string
	}{
		{"https://example.com/Some/Upper/Path", "URL_UPPERCASE"},
		{"https://example.com/some_page", "URL_UNDERSCORES"},
		{"https://example.com/p?a=1&b=2&c=3&d=4", "URL_TOO_MANY_PARAMS"},
		{"https://example.com/a page with spaces", "URL_SPECIAL_CHARS"},
	}

	for _, tc := range cases {
		s := healthyPage(1, tc.url)
		findings := Evaluate([]PageSignals{s}, testPolicy())
		if !hasCode(findings, 1, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.url, tc.code, codesFor(findings, 1))
		}
	}

	long := healthyPage(2, "https://example.com/"+string(make([]byte, 0))+"very-long/")
	long.URL = "https://example.com/" + repeat("segment/", 15)
	findings := Evaluate([]PageSignals{long}, testPolicy())
	if !hasCode(findings, 2, "URL_TOO_LONG") {
		t.Fatalf("expected URL_TOO_LONG for %d chars", len(long.URL))
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestDuplicateTitleGrouping(t *testing.T) {
	a := healthyPage(1, "https://example.com/a")
	b := healthyPage(2, "https://example.com/b")
	c := healthyPage(3, "https://example.com/c")
	d := healthyPage(4, "https://example.com/d")

	a.Title = strPtr("Shared Product Title")
	b.Title = strPtr("  Shared   Product Title ") // same after whitespace normalization
	c.Title = strPtr("A unique title for this page")
	d.Title = strPtr("shared product title") // different case, not a duplicate
	for _, s := range []*PageSignals{&a, &b, &c, &d} {
		n := len([]rune(*s.Title))
		s.TitleLength = &n
	}

	findings := Evaluate([]PageSignals{a, b, c, d}, testPolicy())

	if !hasCode(findings, 1, "TITLE_DUPLICATE") || !hasCode(findings, 2, "TITLE_DUPLICATE") {
		t.Fatal("both members of the duplicate group must be flagged")
	}
	if hasCode(findings, 3, "TITLE_DUPLICATE") {
		t.Fatal("unique title must not be flagged")
	}
	if hasCode(findings, 4, "TITLE_DUPLICATE") {
		t.Fatal("grouping preserves case; a lowercased variant is not a duplicate")
	}

	// details name the sibling
	for _, f := range findings {
		if f.URLID == 1 && f.Code == "TITLE_DUPLICATE" {
			if f.Details == nil {
				t.Fatal("duplicate finding must carry details")
			}
			var details map[string][]string
			if err := json.Unmarshal([]byte(*f.Details), &details); err != nil {
				t.Fatalf("details not valid JSON: %v", err)
			}
			if len(details["duplicate_of"]) != 1 || details["duplicate_of"][0] != "https://example.com/b" {
				t.Fatalf("unexpected siblings: %v", details["duplicate_of"])
			}
		}
	}
}

func TestContentDuplicateNeedsAllComponents(t *testing.T) {
	a := healthyPage(1, "https://example.com/a")
	b := healthyPage(2, "https://example.com/b")
	// identical fingerprints
	findings := Evaluate([]PageSignals{a, b}, testPolicy())
	if !hasCode(findings, 1, "CONTENT_DUPLICATE") || !hasCode(findings, 2, "CONTENT_DUPLICATE") {
		t.Fatal("identical fingerprints must be flagged as duplicates")
	}

	// missing word count abstains
	b.WordCount = nil
	findings = Evaluate([]PageSignals{a, b}, testPolicy())
	if hasCode(findings, 1, "CONTENT_DUPLICATE") || hasCode(findings, 2, "CONTENT_DUPLICATE") {
		t.Fatal("fingerprint with a missing component must abstain")
	}
}

func TestHTTPOnHTTPSSite(t *testing.T) {
	secure := healthyPage(1, "https://example.com/a")
	plain := healthyPage(2, "http://example.com/old")

	findings := Evaluate([]PageSignals{secure, plain}, testPolicy())
	if !hasCode(findings, 2, "HTTP_ON_HTTPS_SITE") {
		t.Fatalf("expected HTTP_ON_HTTPS_SITE, got %v", codesFor(findings, 2))
	}
	if hasCode(findings, 1, "HTTP_ON_HTTPS_SITE") {
		t.Fatal("https page must not be flagged")
	}

	// all-http site: rule stays silent
	plainOnly := healthyPage(3, "http://example.com/x")
	findings = Evaluate([]PageSignals{plainOnly}, testPolicy())
	if hasCode(findings, 3, "HTTP_ON_HTTPS_SITE") {
		t.Fatal("rule must not fire on a site with no https pages")
	}
}

func TestOrphanPage(t *testing.T) {
	orphan := healthyPage(1, "https://example.com/orphan")
	orphan.InboundLinks = intPtr(0)

	linked := healthyPage(2, "https://example.com/linked")
	linked.InboundLinks = intPtr(3)

	noData := healthyPage(3, "https://example.com/unknown")

	errPage := healthyPage(4, "https://example.com/gone")
	errPage.InboundLinks = intPtr(0)
	errPage.StatusCode = intPtr(404)

	findings := Evaluate([]PageSignals{orphan, linked, noData, errPage}, testPolicy())

	if !hasCode(findings, 1, "ORPHAN_PAGE") {
		t.Fatalf("expected ORPHAN_PAGE, got %v", codesFor(findings, 1))
	}
	if hasCode(findings, 2, "ORPHAN_PAGE") {
		t.Fatal("linked page must not be an orphan")
	}
	if hasCode(findings, 3, "ORPHAN_PAGE") {
		t.Fatal("rule must abstain without link data")
	}
	if hasCode(findings, 4, "ORPHAN_PAGE") {
		t.Fatal("rule must not fire on non-200 pages")
	}
}

func TestDisabledRules(t *testing.T) {
	p := testPolicy()
	p.DisabledRules = []string{"TITLE_MISSING", "TITLE_DUPLICATE"}

	a := healthyPage(1, "https://example.com/a")
	a.Title = nil
	a.TitleLength = nil

	b := healthyPage(2, "https://example.com/b")
	c := healthyPage(3, "https://example.com/c")
	b.Title = strPtr("Same Title Here For Both")
	c.Title = strPtr("Same Title Here For Both")
	for _, s := range []*PageSignals{&b, &c} {
		n := len([]rune(*s.Title))
		s.TitleLength = &n
	}

	findings := Evaluate([]PageSignals{a, b, c}, p)
	if hasCode(findings, 1, "TITLE_MISSING") {
		t.Fatal("disabled per-url rule must not fire")
	}
	if hasCode(findings, 2, "TITLE_DUPLICATE") {
		t.Fatal("disabled cross-url rule must not fire")
	}
}

// A mixed three-page crawl: two pages share a title, one of them is thin, and
// a 404 returned no title at all. Checks the exact finding set and the health
// score it produces.
func TestThreePageAuditScenario(t *testing.T) {
	p := testPolicy()
	p.TitleMinLength = 4 // the fixture titles are exactly four characters

	a := healthyPage(1, "https://example.com/a")
	a.Title = strPtr("Home")
	a.TitleLength = intPtr(4)
	a.WordCount = intPtr(50)
	a.H1 = strPtr("Welcome to A")
	a.MetaDescription = strPtr(repeat("a", 130))
	a.MetaDescLength = intPtr(130)

	b := healthyPage(2, "https://example.com/b")
	b.Title = strPtr("Home")
	b.TitleLength = intPtr(4)
	b.WordCount = intPtr(900)
	b.H1 = strPtr("Welcome to B")
	b.MetaDescription = strPtr(repeat("b", 130))
	b.MetaDescLength = intPtr(130)

	c := PageSignals{URLID: 3, URL: "https://example.com/c", StatusCode: intPtr(404)}

	findings := Evaluate([]PageSignals{a, b, c}, p)

	want := []string{
		"TITLE_DUPLICATE/1", "TITLE_DUPLICATE/2",
		"TITLE_MISSING/3", "CRAWL_ERROR_4XX/3",
		"CONTENT_THIN/1",
	}
	got := findingKeys(findings)
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("finding set mismatch:\n got %v\nwant %v", got, want)
	}

	typeByID := make(map[int64]models.IssueType)
	idByCode := make(map[string]int64)
	for i, def := range Catalog {
		id := int64(i + 1)
		typeByID[id] = models.IssueType{ID: id, Code: def.Code, Severity: def.Severity}
		idByCode[def.Code] = id
	}
	issues := make([]models.Issue, 0, len(findings))
	for _, f := range findings {
		issues = append(issues, models.Issue{IssueTypeID: idByCode[f.Code], Status: models.IssueStatusPending})
	}

	// four majors (duplicate pair, missing title, thin page) and one critical:
	// 100 - 4*2.0 - 5.0
	if health := SiteHealth(issues, typeByID, p.Weights); health != 87 {
		t.Fatalf("health: want 87, got %f", health)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	pages := []PageSignals{
		healthyPage(1, "https://example.com/"),
		healthyPage(2, "https://example.com/pricing"),
		healthyPage(3, "https://example.com/blog"),
	}
	pages[1].Title = strPtr("Shared")
	pages[2].Title = strPtr("Shared")
	pages[1].WordCount = intPtr(40)
	pages[2].StatusCode = intPtr(404)
	for i := range pages {
		if pages[i].Title != nil {
			n := len([]rune(*pages[i].Title))
			pages[i].TitleLength = &n
		}
	}

	first := Evaluate(pages, testPolicy())
	for i := 0; i < 5; i++ {
		again := Evaluate(pages, testPolicy())
		if !reflect.DeepEqual(findingKeys(first), findingKeys(again)) {
			t.Fatalf("run %d produced a different finding sequence", i)
		}
	}
}

func findingKeys(findings []Finding) []string {
	keys := make([]string, len(findings))
	for i, f := range findings {
		keys[i] = f.Code + "/" + itoa(f.URLID)
	}
	return keys
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
