
package models

import "time"

// DateLayout is the calendar-date key used for snapshots and report periods.
const DateLayout = time.DateOnly

// RawRecord is one scraped article or blog post.
type RawRecord struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
	Summary     string `json:"summary"`
	Published   string `json:"date,omitempty"`
	Category    string `json:"category,omitempty"`
	Source      string `json:"source"`
	Keyword     string `json:"keyword,omitempty"`
}

// Text is the title and summary joined the way the ranker consumes them.
func (r RawRecord) Text() string {
	return r.Title + " " + r.Summary + " "
}

type KeywordCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Snapshot is the result of one full collection pass. It is never mutated
// after it has been handed to the store.
type Snapshot struct {
	CollectedAt      time.Time           `json:"collected_at"`
	Sources          []string            `json:"sources"`
	News             []RawRecord         `json:"news"`
	Blogs            []RawRecord         `json:"blogs"`
	OverallKeywords  []string            `json:"overall_keywords"`
	CategoryKeywords map[string][]string `json:"category_keywords"`
}

// Date is the calendar date the snapshot is filed under.
func (s *Snapshot) Date() string {
	return s.CollectedAt.Format(DateLayout)
}

// TopKeywords returns the externally reported top 10.
func (s *Snapshot) TopKeywords() []string {
	if len(s.OverallKeywords) <= 10 {
		return s.OverallKeywords
	}
	return s.OverallKeywords[:10]
}

type EconomyReport struct {
	Date         string      `json:"date"`
	CollectedAt  *time.Time  `json:"collected_at,omitempty"`
	Keywords     []string    `json:"economy_keywords"`
	DomesticNews []RawRecord `json:"domestic_economy_news"`
	GlobalNews   []RawRecord `json:"global_economy_news"`
	Blogs        []RawRecord `json:"economy_blogs"`
	Sources      []string    `json:"sources"`
	Error        string      `json:"error,omitempty"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type WeeklyReport struct {
	Period      Period               `json:"period"`
	TopKeywords []string             `json:"top_keywords"`
	Daily       map[string]*Snapshot `json:"daily_data"`
}
