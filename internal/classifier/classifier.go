
package classifier

import (
	"strings"

	"trend-collector/internal/models"
)

// Label is the economy bucket a news record falls into.
type Label string

const (
	Domestic Label = "domestic"
	Global   Label = "global"
	None     Label = "none"
)

// economyTerms is the closed list used by the relevance test. Matching is a
// plain substring test with no normalization.
var economyTerms = []string{
	"경제", "금융", "주식", "상승", "하락", "원화", "달러", "환율",
	"금리", "인플레", "인플레이션", "디플레", "디플레이션", "물가",
	"재테크", "재무", "투자", "시장", "무역", "수출", "수입", "관세",
	"상품", "사업", "기업", "산업", "일자리", "고용", "실업",
	"GDP", "국내총생산", "경제성장", "경제위기", "경제정책", "기준금리",
	"중앙은행", "세금", "세제", "세수", "세정", "예산", "부채", "국채",
}

// FallbackKeywords stand in when no economy text was found for the day.
var FallbackKeywords = []string{
	"경제", "금융", "주식", "상승", "하락", "환율", "금리",
	"물가", "인플레이션", "재테크", "투자", "시장", "무역",
	"기업", "산업", "고용", "GDP", "경제성장", "중앙은행",
}

const (
	categoryEconomy       = "economy"
	categoryWorld         = "world"
	categoryInternational = "international"
	economyMarker         = "경제"
)

// Classifier buckets records for the economy report.
type Classifier struct {
	includeGlobal bool
}

func New(includeGlobal bool) *Classifier { return &Classifier{includeGlobal: includeGlobal} }

// IsEconomyRelated reports whether text contains any economy term.
func IsEconomyRelated(text string) bool {
	for _, term := range economyTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Classify labels a news record. World-desk records are only ever global,
// and only when global coverage is enabled.
func (c *Classifier) Classify(r models.RawRecord) Label {
	if isWorld(r.Category) {
		if c.includeGlobal && IsEconomyRelated(r.Title) {
			return Global
		}
		return None
	}
	if r.Category == categoryEconomy || strings.Contains(r.Title, economyMarker) {
		return Domestic
	}
	return None
}

// RelevantBlog reports whether a blog post belongs in the economy report.
// Only the first ten keywords are considered.
func RelevantBlog(r models.RawRecord, keywords []string) bool {
	if IsEconomyRelated(r.Title) {
		return true
	}
	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(r.Title, k) {
			return true
		}
	}
	return false
}

func isWorld(category string) bool {
	return category == categoryWorld || category == categoryInternational
}
