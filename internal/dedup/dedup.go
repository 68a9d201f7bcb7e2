// Package dedup ищет среди недавних статей похожую на новую.
package dedup

import (
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const (
	// Сравниваем только начало текста, иначе ratio слишком дорогой
	compareLength = 500

	DefaultWindow         = 3 * 24 * time.Hour
	DefaultTitleThreshold = 0.85
	DefaultGateThreshold  = 0.5
)

// Similarity возвращает долю совпадения двух строк в диапазоне [0, 1].
// Регистр не учитывается, сравниваются первые 500 символов.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	runes := []rune(s)
	if len(runes) > compareLength {
		runes = runes[:compareLength]
	}
	runes = []rune(strings.ToLower(string(runes)))

	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// Найденный оригинал для новой статьи
type Match struct {
	ID    string
	Score float64
	// true, если совпал текст, а не заголовок
	ByContent bool
}

type Index struct {
	window         time.Duration
	titleThreshold float64
	gateThreshold  float64
}

type Option func(*Index)

func WithWindow(window time.Duration) Option {
	return func(i *Index) {
		i.window = window
	}
}

// WithThresholds задает порог дубликата и порог "заголовки похожи, проверим текст"
func WithThresholds(duplicate, gate float64) Option {
	return func(i *Index) {
		i.titleThreshold = duplicate
		i.gateThreshold = gate
	}
}

func New(opts ...Option) *Index {
	idx := &Index{
		window:         DefaultWindow,
		titleThreshold: DefaultTitleThreshold,
		gateThreshold:  DefaultGateThreshold,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Window - за какой период хранилище должно отдавать кандидатов
func (i *Index) Window() time.Duration {
	return i.window
}

// FindSimilar проходит кандидатов по порядку и возвращает первого похожего.
// Кандидаты должны быть не дубликатами и упорядочены по времени создания.
func (i *Index) FindSimilar(title, content string, candidates []model.Article) (Match, bool) {
	for _, candidate := range candidates {
		titleScore := Similarity(title, candidate.Title)
		if titleScore > i.titleThreshold {
			return Match{ID: candidate.ID, Score: titleScore}, true
		}

		// Текст сравниваем только когда заголовки хоть немного похожи
		if titleScore <= i.gateThreshold || content == "" || candidate.Content == "" {
			continue
		}

		if contentScore := Similarity(content, candidate.Content); contentScore > i.titleThreshold {
			return Match{ID: candidate.ID, Score: contentScore, ByContent: true}, true
		}
	}

	return Match{}, false
}
