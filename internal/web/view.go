package web

import (
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

const defaultDays = 7

type dayOption struct {
	Days  int
	Label string
}

var dayOptions = []dayOption{
	{Days: 1, Label: "Last 24 hours"},
	{Days: 3, Label: "Last 3 days"},
	{Days: 7, Label: "Last 7 days"},
}

// Окно выборки можно выбрать только из списка, иначе берем неделю
func parseDays(raw string) int {
	days, err := strconv.Atoi(raw)
	if err != nil {
		return defaultDays
	}

	if !lo.ContainsBy(dayOptions, func(o dayOption) bool { return o.Days == days }) {
		return defaultDays
	}
	return days
}

type articleView struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Category   string    `json:"category"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	TimeAgo    string    `json:"time_ago"`
	Summarized bool      `json:"summarized"`
}

func toViews(articles []model.Article, now time.Time) []articleView {
	return lo.Map(articles, func(a model.Article, _ int) articleView {
		return articleView{
			ID:         a.ID,
			Source:     a.Source,
			Title:      a.Title,
			URL:        a.URL,
			Category:   a.Category,
			Summary:    a.Summary,
			CreatedAt:  a.CreatedAt,
			TimeAgo:    timeAgo(a.CreatedAt, now),
			Summarized: a.Summarized(),
		}
	})
}

type indexPage struct {
	Articles   []articleView
	Sources    []string
	Categories []string
	DayOptions []dayOption
	Source     string
	Category   string
	Days       int
	Now        string
	Error      string
}

// timeAgo переводит время создания в "N minutes/hours/days ago"
func timeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	if t.IsZero() || diff < time.Minute {
		return "recently"
	}

	if days := int(diff / (24 * time.Hour)); days > 0 {
		return plural(days, "day")
	}
	if hours := int(diff / time.Hour); hours > 0 {
		return plural(hours, "hour")
	}
	return plural(int(diff/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
