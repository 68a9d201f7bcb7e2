package content

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxParagraphs = 30
	// Текст не длиннее этого считаем отсутствием контента
	minExtractedLength = 200
	// Текст короче этого считаем обрезанным пейволлом
	minArticleLength = 300
)

// Элементы, текст которых никогда не должен попасть в статью
const noiseSelector = "script, style, noscript, nav, header, footer, aside, ads, " +
	".ad, .ads, .advert, .advertisement, [class*='advert'], [id*='advert']"

var paywallIndicators = []string{
	"subscribe to continue",
	"subscription required",
	"sign in to read",
	"create an account",
	"register to read",
	"members only",
	"premium content",
	"to continue reading",
	"already a subscriber",
}

// Extract достает читаемый текст из html: первые 30 абзацев через пробел.
// Второе значение false, если текста нет или он слишком короткий.
func Extract(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	doc.Find(noiseSelector).Remove()

	paragraphs := make([]string, 0, maxParagraphs)
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxParagraphs {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		return true
	})

	text := strings.Join(paragraphs, " ")
	if utf8.RuneCountInString(text) <= minExtractedLength {
		return "", false
	}

	return text, true
}

// IsPaywalled эвристически определяет, что перед нами заглушка пейволла
func IsPaywalled(text string) bool {
	if utf8.RuneCountInString(text) < minArticleLength {
		return true
	}

	lower := strings.ToLower(text)
	for _, indicator := range paywallIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	return false
}

func longEnough(text string) bool {
	return utf8.RuneCountInString(text) >= minArticleLength
}
