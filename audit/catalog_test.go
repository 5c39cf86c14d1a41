package audit

import (
	"testing"

	"seo_auditor/models"
)

func TestCatalogCodesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Catalog {
		if def.Code == "" {
			t.Fatal("catalog entry with empty code")
		}
		if seen[def.Code] {
			t.Fatalf("duplicate catalog code %s", def.Code)
		}
		seen[def.Code] = true
	}
}

func TestCatalogFieldsValid(t *testing.T) {
	severities := map[string]bool{
		models.SeverityCritical: true,
		models.SeverityMajor:    true,
		models.SeverityMinor:    true,
	}
	categories := map[string]bool{
		models.CategoryTechnical:            true,
		models.CategoryContent:              true,
		models.CategoryPerformance:          true,
		models.CategoryLinks:                true,
		models.CategorySecurity:             true,
		models.CategoryStructuredData:       true,
		models.CategorySitemap:              true,
		models.CategoryInternationalization: true,
		models.CategoryJavaScript:           true,
	}

	for _, def := range Catalog {
		if !severities[def.Severity] {
			t.Fatalf("%s: invalid severity %q", def.Code, def.Severity)
		}
		if !categories[def.Category] {
			t.Fatalf("%s: invalid category %q", def.Code, def.Category)
		}
		if def.Name == "" || def.Description == "" || def.FixTemplate == "" || def.WhyItMatters == "" {
			t.Fatalf("%s: incomplete catalog entry", def.Code)
		}
	}
}

// Every rule the evaluator can emit must resolve to a catalog entry, or its
// findings would be silently dropped.
func TestRuleCodesHaveCatalogEntries(t *testing.T) {
	byCode := make(map[string]bool)
	for _, def := range Catalog {
		byCode[def.Code] = true
	}

	for _, r := range urlRules {
		if !byCode[r.code] {
			t.Fatalf("rule %s has no catalog entry", r.code)
		}
	}
	for _, code := range []string{"TITLE_DUPLICATE", "META_DESCRIPTION_DUPLICATE", "H1_DUPLICATE", "CONTENT_DUPLICATE", "HTTP_ON_HTTPS_SITE"} {
		if !byCode[code] {
			t.Fatalf("cross-url rule %s has no catalog entry", code)
		}
	}
}
