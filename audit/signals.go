package audit

import (
	"log"
	"unicode/utf8"

	"seo_auditor/models"
)

// PageSignals is the flat per-URL input to rule evaluation. Nil means the
// signal was never observed; rules abstain on nil rather than treating it
// as zero.
type PageSignals struct {
	URLID int64
	URL   string

	StatusCode      *int
	Title           *string
	TitleLength     *int
	MetaDescription *string
	MetaDescLength  *int
	H1              *string
	WordCount       *int

	InboundLinks  *int
	OutboundLinks *int

	PerformanceScore *float64
	LCP              *float64
	CLS              *float64
	TBT              *float64
}

// ExtractSignals builds rule input from a stored URL row. Derived lengths are
// recomputed from the stored text so evaluation never depends on what the
// crawl-time derivation happened to write. Malformed values are dropped to
// nil and logged; a bad signal must skip its rules, not fire them.
func ExtractSignals(u *models.URL) PageSignals {
	s := PageSignals{
		URLID:            u.ID,
		URL:              u.URL,
		StatusCode:       u.StatusCode,
		Title:            u.Title,
		MetaDescription:  u.MetaDescription,
		H1:               u.H1,
		WordCount:        u.WordCount,
		InboundLinks:     u.InboundLinks,
		OutboundLinks:    u.OutboundLinks,
		PerformanceScore: u.PerformanceScoreMobile,
		LCP:              u.LCP,
		CLS:              u.CLS,
		TBT:              u.TBT,
	}

	if u.Title != nil {
		n := utf8.RuneCountInString(*u.Title)
		s.TitleLength = &n
	}
	if u.MetaDescription != nil {
		n := utf8.RuneCountInString(*u.MetaDescription)
		s.MetaDescLength = &n
	}

	if s.WordCount != nil && *s.WordCount < 0 {
		log.Printf("signals: url %d has negative word_count %d, dropping", u.ID, *s.WordCount)
		s.WordCount = nil
	}
	if s.StatusCode != nil && (*s.StatusCode < 100 || *s.StatusCode > 599) {
		log.Printf("signals: url %d has status_code %d outside HTTP range, dropping", u.ID, *s.StatusCode)
		s.StatusCode = nil
	}
	if s.InboundLinks != nil && *s.InboundLinks < 0 {
		s.InboundLinks = nil
	}
	if s.OutboundLinks != nil && *s.OutboundLinks < 0 {
		s.OutboundLinks = nil
	}

	return s
}
