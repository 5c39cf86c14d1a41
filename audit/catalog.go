package audit

import (
	"context"
	"fmt"
	"log"

	"seo_auditor/models"
	"seo_auditor/storage"
)

// IssueTypeDef is one catalog entry. The catalog is seeded once per store;
// existing rows are never overwritten so manual edits survive restarts.
type IssueTypeDef struct {
	Code         string
	Name         string
	Severity     string
	Category     string
	Description  string
	FixTemplate  string
	WhyItMatters string
}

// EnsureCatalog inserts every catalog entry whose code is not yet present.
// Call at startup; rule evaluation depends on every code resolving to a row.
func EnsureCatalog(ctx context.Context, store storage.Store) error {
	inserted := 0
	for _, def := range Catalog {
		existing, err := store.GetIssueTypeByCode(ctx, def.Code)
		if err != nil {
			return fmt.Errorf("lookup issue type %s: %w", def.Code, err)
		}
		if existing != nil {
			continue
		}

		it := &models.IssueType{
			Code:         def.Code,
			Name:         def.Name,
			Severity:     def.Severity,
			Category:     def.Category,
			Description:  def.Description,
			FixTemplate:  def.FixTemplate,
			WhyItMatters: def.WhyItMatters,
		}
		if err := store.InsertIssueType(ctx, it); err != nil {
			return fmt.Errorf("insert issue type %s: %w", def.Code, err)
		}
		inserted++
	}

	if inserted > 0 {
		log.Printf("catalog: seeded %d issue types", inserted)
	}
	return nil
}

// Catalog is the full set of detectable issue types. Only a subset has an
// active rule wired to it; the rest are defined so the reporting surface and
// future detectors share one vocabulary.
var Catalog = []IssueTypeDef{
	// Technical / crawlability
	{"CRAWL_ERROR_4XX", "Client error (4xx)", models.SeverityCritical, models.CategoryTechnical,
		"The page returned a 4xx status code during the crawl.",
		"Restore the page or return a 301 redirect to its replacement.",
		"Pages returning client errors waste crawl budget and drop out of the index."},
	{"CRAWL_ERROR_5XX", "Server error (5xx)", models.SeverityCritical, models.CategoryTechnical,
		"The page returned a 5xx status code during the crawl.",
		"Inspect server logs and fix the failure; repeated 5xx responses cause deindexing.",
		"Persistent server errors make search engines slow down and eventually drop the URL."},
	{"REDIRECT_3XX", "Redirect (3xx)", models.SeverityMajor, models.CategoryTechnical,
		"The crawled URL redirects instead of serving content.",
		"Link directly to the final destination and keep redirects for legacy URLs only.",
		"Redirects leak link equity and add latency for users and crawlers."},
	{"REDIRECT_CHAIN", "Redirect chain", models.SeverityMajor, models.CategoryTechnical,
		"The URL reaches its destination through multiple consecutive redirects.",
		"Point the first hop directly at the final URL.",
		"Each hop loses link equity and crawlers stop following long chains."},
	{"REDIRECT_LOOP", "Redirect loop", models.SeverityCritical, models.CategoryTechnical,
		"The URL redirects back to itself directly or through intermediaries.",
		"Break the loop so the URL resolves to a 200 page.",
		"Looping URLs are uncrawlable and unusable."},
	{"SERVER_RESPONSE_SLOW", "Slow server response", models.SeverityMajor, models.CategoryPerformance,
		"Time to first byte exceeds the acceptable threshold.",
		"Add caching or tune the backend so TTFB stays under 600ms.",
		"Slow responses reduce crawl rate and hurt every performance metric downstream."},
	{"PAGE_LOAD_SLOW", "Slow page load", models.SeverityMajor, models.CategoryPerformance,
		"Total page load time exceeds the acceptable threshold.",
		"Reduce page weight and defer non-critical resources.",
		"Load time is a ranking signal and directly drives bounce rate."},
	{"EMPTY_RESPONSE", "Empty response", models.SeverityCritical, models.CategoryTechnical,
		"The server returned a response with no body.",
		"Fix the handler so the URL serves actual content.",
		"An empty body means there is nothing to index."},
	{"CSS_JS_BLOCKED", "CSS/JS blocked from crawlers", models.SeverityMinor, models.CategoryTechnical,
		"Stylesheets or scripts are blocked by robots.txt.",
		"Allow crawlers to fetch CSS and JS assets.",
		"Blocked assets prevent search engines from rendering the page as users see it."},
	{"ROBOTS_TXT_INACCESSIBLE", "robots.txt inaccessible", models.SeverityMajor, models.CategoryTechnical,
		"robots.txt could not be fetched.",
		"Serve a valid robots.txt with a 200 status.",
		"An unreachable robots.txt can make crawlers skip the whole site."},
	{"SITEMAP_XML_INACCESSIBLE", "sitemap.xml inaccessible", models.SeverityMinor, models.CategoryTechnical,
		"sitemap.xml could not be fetched.",
		"Serve the sitemap at its declared location with a 200 status.",
		"Without a sitemap, discovery of deep pages depends entirely on internal links."},
	{"CHARSET_ISSUES", "Character encoding problems", models.SeverityMinor, models.CategoryTechnical,
		"The page declares a missing or conflicting character encoding.",
		"Declare UTF-8 in the Content-Type header and the meta charset tag.",
		"Encoding conflicts produce garbled snippets in search results."},

	// Content
	{"TITLE_MISSING", "Missing title", models.SeverityMajor, models.CategoryContent,
		"The page has no <title> element.",
		"Add a unique, descriptive title of 10 to 60 characters.",
		"The title is the strongest on-page relevance signal and the headline in search results."},
	{"TITLE_DUPLICATE", "Duplicate title", models.SeverityMajor, models.CategoryContent,
		"The same title is used on multiple pages.",
		"Write a distinct title for each page describing its unique content.",
		"Duplicate titles make pages compete with each other and look templated."},
	{"TITLE_TOO_LONG", "Title too long", models.SeverityMinor, models.CategoryContent,
		"The title exceeds the configured maximum length.",
		"Shorten the title; put the distinctive part first.",
		"Long titles get truncated in search results, hiding the message."},
	{"TITLE_TOO_SHORT", "Title too short", models.SeverityMinor, models.CategoryContent,
		"The title is shorter than the configured minimum length.",
		"Expand the title with descriptive keywords.",
		"Very short titles waste the most visible piece of search real estate."},
	{"META_DESCRIPTION_MISSING", "Missing meta description", models.SeverityMinor, models.CategoryContent,
		"The page has no meta description.",
		"Add a meta description of 120 to 155 characters summarizing the page.",
		"Without one, search engines synthesize a snippet that may read poorly."},
	{"META_DESCRIPTION_DUPLICATE", "Duplicate meta description", models.SeverityMinor, models.CategoryContent,
		"The same meta description is used on multiple pages.",
		"Write a distinct description for each page.",
		"Identical descriptions give users no reason to pick one result over another."},
	{"META_DESCRIPTION_TOO_LONG", "Meta description too long", models.SeverityMinor, models.CategoryContent,
		"The meta description exceeds the configured maximum length.",
		"Trim the description to fit within the display limit.",
		"Overlong descriptions are cut off mid-sentence in results."},
	{"META_DESCRIPTION_TOO_SHORT", "Meta description too short", models.SeverityMinor, models.CategoryContent,
		"The meta description is shorter than the configured minimum length.",
		"Expand the description to use the available snippet space.",
		"Short descriptions waste snippet space and depress click-through."},
	{"H1_MISSING", "Missing H1", models.SeverityMajor, models.CategoryContent,
		"The page has no <h1> heading.",
		"Add a single H1 that states the page topic.",
		"The H1 anchors the document outline for users and crawlers alike."},
	{"H1_MULTIPLE", "Multiple H1s", models.SeverityMinor, models.CategoryContent,
		"The page has more than one <h1> heading.",
		"Keep one H1 and demote the rest to H2.",
		"Multiple H1s dilute the topical focus of the page."},
	{"H1_DUPLICATE", "Duplicate H1", models.SeverityMinor, models.CategoryContent,
		"The same H1 is used on multiple pages.",
		"Make each page's H1 describe that page specifically.",
		"Repeated H1s suggest templated or duplicated content."},
	{"CONTENT_DUPLICATE", "Duplicate content", models.SeverityMajor, models.CategoryContent,
		"The page body duplicates another page on the site.",
		"Consolidate the duplicates or mark one canonical.",
		"Duplicates split ranking signals and can trigger filtering."},
	{"CONTENT_THIN", "Thin content", models.SeverityMajor, models.CategoryContent,
		"The page has fewer words than the configured minimum.",
		"Expand the page with substantive content or merge it into a stronger page.",
		"Thin pages rarely rank and drag down sitewide quality assessments."},
	{"CONTENT_EMPTY", "Empty content", models.SeverityCritical, models.CategoryContent,
		"The page body contains no indexable text.",
		"Add real content or remove the URL from the site.",
		"Empty pages are pure crawl waste."},
	{"IMAGE_ALT_MISSING", "Image missing alt attribute", models.SeverityMinor, models.CategoryContent,
		"One or more images have no alt attribute.",
		"Add descriptive alt text to every meaningful image.",
		"Alt text is an accessibility requirement and an image-search ranking input."},
	{"IMAGE_ALT_EMPTY", "Image with empty alt", models.SeverityMinor, models.CategoryContent,
		"One or more meaningful images have an empty alt attribute.",
		"Describe the image content in the alt attribute.",
		"Empty alt on content images hides them from image search and screen readers."},
	{"IMAGE_BROKEN", "Broken image", models.SeverityMinor, models.CategoryContent,
		"An image on the page fails to load.",
		"Fix or remove the broken image reference.",
		"Broken images signal neglect to users and quality raters."},
	{"IMAGE_TOO_HEAVY", "Oversized image", models.SeverityMajor, models.CategoryPerformance,
		"An image's file size is far larger than its display size requires.",
		"Compress and resize images; serve modern formats.",
		"Heavy images dominate page weight and slow the largest contentful paint."},

	// URL shape
	{"URL_TOO_LONG", "URL too long", models.SeverityMinor, models.CategoryTechnical,
		"The URL exceeds the configured maximum length.",
		"Shorten the path; drop redundant segments and parameters.",
		"Long URLs are truncated in results and discourage sharing."},
	{"URL_TOO_MANY_PARAMS", "Too many query parameters", models.SeverityMinor, models.CategoryTechnical,
		"The URL carries more query parameters than the configured maximum.",
		"Move essential parameters into the path and drop the rest.",
		"Parameter-heavy URLs spawn near-duplicate crawl targets."},
	{"URL_NON_CANONICAL", "Non-canonical URL variant", models.SeverityMajor, models.CategoryTechnical,
		"The URL is a variant of another URL that should be canonical.",
		"Redirect or canonicalize the variant to the preferred URL.",
		"Variants split signals between interchangeable addresses."},
	{"URL_SPECIAL_CHARS", "Special characters in URL", models.SeverityMinor, models.CategoryTechnical,
		"The URL contains spaces or unsafe special characters.",
		"Use lowercase letters, digits, and hyphens only.",
		"Unsafe characters cause inconsistent encoding and broken links."},
	{"URL_UPPERCASE", "Uppercase characters in URL", models.SeverityMinor, models.CategoryTechnical,
		"The URL path contains uppercase letters.",
		"Lowercase the path and redirect the old casing.",
		"Mixed-case paths create case-variant duplicates on case-sensitive servers."},
	{"URL_UNDERSCORES", "Underscores in URL", models.SeverityMinor, models.CategoryTechnical,
		"The URL path uses underscores as word separators.",
		"Use hyphens to separate words in URLs.",
		"Search engines treat underscores as joiners, not separators."},

	// Links
	{"INTERNAL_BROKEN_LINK", "Broken internal link", models.SeverityMajor, models.CategoryLinks,
		"The page links to an internal URL that returns an error.",
		"Fix the link target or remove the link.",
		"Broken internal links strand users and leak crawl budget."},
	{"EXTERNAL_BROKEN_LINK", "Broken external link", models.SeverityMinor, models.CategoryLinks,
		"The page links to an external URL that returns an error.",
		"Update or remove the dead external reference.",
		"Dead outbound links erode the page's trustworthiness."},
	{"OUTBOUND_TO_ERROR_PAGE", "Outbound link to error page", models.SeverityMinor, models.CategoryLinks,
		"The page links to a URL that resolves to an error page.",
		"Point the link at a live destination.",
		"Links into error pages waste the authority they pass."},
	{"ORPHAN_PAGE", "Orphan page", models.SeverityMajor, models.CategoryLinks,
		"No internal links point at this page.",
		"Link to the page from related content or navigation.",
		"Pages without internal links are hard to discover and rank poorly."},
	{"CRAWL_DEPTH_EXCESSIVE", "Excessive crawl depth", models.SeverityMinor, models.CategoryLinks,
		"The page sits too many clicks away from the home page.",
		"Surface the page through category or hub links.",
		"Deep pages get crawled less often and accumulate less authority."},
	{"TOO_MANY_LINKS", "Too many on-page links", models.SeverityMinor, models.CategoryLinks,
		"The page carries more outbound links than the configured maximum.",
		"Prune navigational boilerplate and low-value links.",
		"Hundreds of links dilute the equity each one passes."},

	// Canonicalization & indexability
	{"CANONICAL_MISSING", "Missing canonical tag", models.SeverityMinor, models.CategoryTechnical,
		"The page declares no canonical URL.",
		"Add a self-referencing canonical tag.",
		"Without a canonical, parameter and session variants compete freely."},
	{"CANONICAL_INCORRECT", "Incorrect canonical target", models.SeverityMajor, models.CategoryTechnical,
		"The canonical tag points at an unrelated or wrong URL.",
		"Point the canonical at the preferred version of this content.",
		"A wrong canonical hands this page's signals to another URL."},
	{"CANONICAL_CHAIN", "Canonical chain", models.SeverityMinor, models.CategoryTechnical,
		"The canonical target itself canonicalizes to a third URL.",
		"Canonicalize every variant directly to the final URL.",
		"Chained canonicals are followed inconsistently."},
	{"CANONICAL_TO_ERROR", "Canonical points to error page", models.SeverityMajor, models.CategoryTechnical,
		"The canonical target returns an error status.",
		"Point the canonical at a live 200 URL.",
		"A dead canonical target can deindex the live page."},
	{"ROBOTS_BLOCKING_INDEXABLE", "robots.txt blocks indexable page", models.SeverityMajor, models.CategoryTechnical,
		"robots.txt blocks a page that should be indexed.",
		"Remove the disallow rule for this path.",
		"Blocked pages cannot be crawled even when they are linked and indexable."},
	{"ROBOTS_CONFLICT", "Conflicting robots directives", models.SeverityMinor, models.CategoryTechnical,
		"Meta robots and robots.txt or header directives disagree.",
		"Pick one directive source and remove the contradiction.",
		"Conflicting directives are resolved unpredictably per engine."},
	{"NOINDEX_ON_IMPORTANT", "noindex on important page", models.SeverityCritical, models.CategoryTechnical,
		"A page that should rank carries a noindex directive.",
		"Remove the noindex directive.",
		"noindex removes the page from search entirely."},
	{"NOFOLLOW_MISUSED", "Misused nofollow", models.SeverityMinor, models.CategoryLinks,
		"Internal links carry rel=nofollow.",
		"Drop nofollow from internal links.",
		"Nofollowed internal links discard equity the site already owns."},
	{"INDEXABLE_BUT_NOT_CRAWLABLE", "Indexable but not crawlable", models.SeverityMajor, models.CategoryTechnical,
		"The page may be indexed but crawlers are blocked from fetching it.",
		"Unblock the path or add noindex, depending on intent.",
		"Blocked-but-indexed URLs appear in results with no snippet."},

	// Internationalization
	{"HREFLANG_MISSING", "Missing hreflang", models.SeverityMinor, models.CategoryInternationalization,
		"Translated variants exist but declare no hreflang annotations.",
		"Add hreflang tags linking every language variant.",
		"Without hreflang, users get served the wrong language version."},
	{"HREFLANG_INCORRECT", "Incorrect hreflang", models.SeverityMajor, models.CategoryInternationalization,
		"hreflang annotations use invalid language or region codes.",
		"Use valid ISO 639-1 / ISO 3166-1 codes.",
		"Invalid codes are ignored wholesale."},
	{"HREFLANG_NO_RECIPROCITY", "hreflang not reciprocal", models.SeverityMinor, models.CategoryInternationalization,
		"A declared hreflang alternate does not link back.",
		"Add the return annotation on every alternate.",
		"Non-reciprocal annotations are discarded."},
	{"HREFLANG_CANONICAL_CONFLICT", "hreflang conflicts with canonical", models.SeverityMajor, models.CategoryInternationalization,
		"The page canonicalizes away from itself while declaring hreflang alternates.",
		"Make hreflang point between canonical URLs only.",
		"The conflict makes engines drop either the canonical or the hreflang cluster."},

	// Sitemap
	{"SITEMAP_URL_ERROR", "Sitemap URL returns error", models.SeverityMajor, models.CategorySitemap,
		"A URL listed in the sitemap returns an error status.",
		"Remove dead URLs from the sitemap or fix them.",
		"Error URLs in the sitemap erode crawler trust in the whole file."},
	{"SITEMAP_URL_BLOCKED_ROBOTS", "Sitemap URL blocked by robots.txt", models.SeverityMajor, models.CategorySitemap,
		"A sitemap URL is disallowed by robots.txt.",
		"Align the sitemap and robots.txt; list only crawlable URLs.",
		"Submitting blocked URLs sends contradictory signals."},
	{"SITEMAP_URL_NOINDEX", "Sitemap URL is noindex", models.SeverityMajor, models.CategorySitemap,
		"A sitemap URL carries a noindex directive.",
		"Remove noindexed URLs from the sitemap.",
		"The sitemap should list only pages intended for the index."},
	{"SITEMAP_URL_MISSING", "Indexable URL missing from sitemap", models.SeverityMinor, models.CategorySitemap,
		"An indexable page is not listed in the sitemap.",
		"Add the URL to the sitemap.",
		"Missing entries slow discovery of new and deep pages."},
	{"SITEMAP_TOO_LARGE", "Sitemap too large", models.SeverityMinor, models.CategorySitemap,
		"The sitemap exceeds the 50,000 URL / 50MB limit.",
		"Split the sitemap and reference the parts from an index file.",
		"Oversized sitemaps are rejected outright."},

	// Structured data
	{"SCHEMA_SYNTAX_ERROR", "Structured data syntax error", models.SeverityMinor, models.CategoryStructuredData,
		"The page's structured data fails to parse.",
		"Validate the JSON-LD and fix the syntax.",
		"Broken markup disqualifies the page from rich results."},
	{"SCHEMA_MISSING", "Missing structured data", models.SeverityMinor, models.CategoryStructuredData,
		"The page type supports structured data but declares none.",
		"Add the appropriate schema.org markup.",
		"Structured data unlocks rich result treatments."},
	{"SCHEMA_MISSING_REQUIRED_PROPERTY", "Structured data missing required property", models.SeverityMinor, models.CategoryStructuredData,
		"The structured data omits a property required by its type.",
		"Add the required properties per the schema.org type definition.",
		"Incomplete markup is ineligible for rich results."},
	{"SCHEMA_WRONG_TYPE", "Wrong structured data type", models.SeverityMinor, models.CategoryStructuredData,
		"The declared schema type does not match the page content.",
		"Use the schema type that matches what the page actually is.",
		"Mismatched types can be treated as spammy markup."},

	// Pagination
	{"PAGINATION_REL_NEXT_PREV_MISSING", "Missing pagination annotations", models.SeverityMinor, models.CategoryTechnical,
		"A paginated series declares no rel next/prev annotations.",
		"Annotate the series or consolidate onto a view-all page.",
		"Unannotated series fragment into competing thin pages."},
	{"PAGINATION_REL_NEXT_PREV_INCORRECT", "Incorrect pagination annotations", models.SeverityMinor, models.CategoryTechnical,
		"rel next/prev annotations point at the wrong pages.",
		"Fix the annotations to follow the actual page order.",
		"Wrong annotations mislead crawlers about the series structure."},
	{"PAGINATION_PARAM_ISSUES", "Pagination parameter problems", models.SeverityMinor, models.CategoryTechnical,
		"Pagination parameters generate redundant or unbounded URL spaces.",
		"Canonicalize or constrain the pagination parameters.",
		"Unbounded parameter spaces soak up crawl budget."},

	// Security
	{"HTTP_ON_HTTPS_SITE", "HTTP page on HTTPS site", models.SeverityMajor, models.CategorySecurity,
		"The page is served over HTTP while the site uses HTTPS.",
		"Serve the page over HTTPS and redirect the HTTP variant.",
		"Mixed protocols split signals and trigger browser warnings."},
	{"MIXED_CONTENT", "Mixed content", models.SeverityMajor, models.CategorySecurity,
		"An HTTPS page loads subresources over HTTP.",
		"Load every subresource over HTTPS.",
		"Mixed content breaks the padlock and is blocked by modern browsers."},
	{"SSL_INVALID", "Invalid SSL certificate", models.SeverityCritical, models.CategorySecurity,
		"The site's TLS certificate is expired, mismatched, or untrusted.",
		"Install a valid certificate covering every served hostname.",
		"Certificate errors turn every visit into a full-page warning."},
	{"MISSING_HTTP_TO_HTTPS_REDIRECT", "Missing HTTP to HTTPS redirect", models.SeverityMajor, models.CategorySecurity,
		"The HTTP variant serves content instead of redirecting to HTTPS.",
		"301-redirect all HTTP traffic to HTTPS.",
		"Serving both protocols creates a full duplicate of the site."},

	// JavaScript
	{"JS_BLOCKING_CONTENT", "Content hidden behind JavaScript", models.SeverityMajor, models.CategoryJavaScript,
		"Primary content only exists after JavaScript execution.",
		"Server-render or pre-render the primary content.",
		"JS-only content is indexed late or not at all."},
	{"JS_BLOCKED_RESOURCES", "Blocked JavaScript resources", models.SeverityMinor, models.CategoryJavaScript,
		"Scripts needed for rendering are blocked from crawlers.",
		"Allow crawlers to fetch rendering-critical scripts.",
		"Blocked scripts make the rendered and crawled page diverge."},
	{"RENDERED_HTML_DIFFERS", "Rendered HTML differs from source", models.SeverityMinor, models.CategoryJavaScript,
		"The rendered DOM differs substantially from the raw HTML.",
		"Keep critical content and tags identical pre- and post-render.",
		"Divergence makes indexing depend on the rendering queue."},

	// Performance (Lighthouse)
	{"PERF_LCP_SLOW", "Slow largest contentful paint", models.SeverityMajor, models.CategoryPerformance,
		"Largest Contentful Paint exceeds the configured threshold.",
		"Optimize the LCP element: compress it, preload it, cut render-blocking work before it.",
		"LCP is a Core Web Vital and a direct ranking input."},
	{"PERF_FCP_SLOW", "Slow first contentful paint", models.SeverityMinor, models.CategoryPerformance,
		"First Contentful Paint exceeds the recommended threshold.",
		"Reduce render-blocking resources and server latency.",
		"A slow first paint makes the site feel broken."},
	{"PERF_SI_SLOW", "Slow speed index", models.SeverityMinor, models.CategoryPerformance,
		"Speed Index exceeds the recommended threshold.",
		"Prioritize above-the-fold rendering.",
		"High Speed Index means the page fills in visibly slowly."},
	{"PERF_TBT_HIGH", "High total blocking time", models.SeverityMajor, models.CategoryPerformance,
		"Total Blocking Time exceeds the configured threshold.",
		"Split long main-thread tasks and defer non-critical scripts.",
		"Blocking time is the lab proxy for input responsiveness."},
	{"PERF_CLS_HIGH", "High cumulative layout shift", models.SeverityMinor, models.CategoryPerformance,
		"Cumulative Layout Shift exceeds the configured threshold.",
		"Reserve space for images, ads, and embeds before they load.",
		"Layout shift is a Core Web Vital and a major annoyance signal."},
	{"PERF_RENDER_BLOCKING_RESOURCES", "Render-blocking resources", models.SeverityMinor, models.CategoryPerformance,
		"Stylesheets or scripts block the first render.",
		"Inline critical CSS and defer the rest.",
		"Every blocking resource delays first paint."},
	{"PERF_UNUSED_JS", "Unused JavaScript", models.SeverityMinor, models.CategoryPerformance,
		"A large share of shipped JavaScript is never executed.",
		"Code-split and drop dead bundles.",
		"Unused bytes cost download and parse time for nothing."},
	{"PERF_LARGE_JS_BUNDLES", "Large JavaScript bundles", models.SeverityMajor, models.CategoryPerformance,
		"JavaScript payloads are larger than the page's interactivity needs.",
		"Split bundles and lazy-load below-the-fold functionality.",
		"Large bundles dominate blocking time on mid-range devices."},
	{"PERF_LARGE_IMAGES", "Large images", models.SeverityMajor, models.CategoryPerformance,
		"Images ship at far larger sizes than displayed.",
		"Resize, compress, and serve responsive image sets.",
		"Image weight is usually the largest avoidable transfer cost."},
	{"PERF_TEXT_NOT_COMPRESSED", "Text not compressed", models.SeverityMinor, models.CategoryPerformance,
		"Text resources are served without gzip or brotli.",
		"Enable compression for HTML, CSS, JS, and JSON responses.",
		"Compression typically cuts text transfer size by 70 percent or more."},
	{"PERF_CACHE_POLICY_ISSUES", "Inefficient cache policy", models.SeverityMinor, models.CategoryPerformance,
		"Static assets are served with short or missing cache lifetimes.",
		"Set long max-age values with content-hashed filenames.",
		"Poor caching makes repeat visits as slow as first ones."},
}
