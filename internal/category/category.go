// Package category присваивает статье тему по источнику и ключевым словам.
package category

import (
	"strings"

	"github.com/tomakado/containers/set"

	"github.com/kovalyov-valentin/news-digest/internal/model"
)

// Сколько ключевых слов должно совпасть, чтобы мы поверили в категорию
const minKeywordHits = 2

type Category struct {
	Name     string
	Keywords []string
	// Источники, статьи которых всегда попадают в эту категорию
	Sources []string
}

// Порядок важен: при равном числе совпадений выигрывает категория выше
var defaultCategories = []Category{
	{
		Name: "Motorsport",
		Keywords: []string{"f1", "formula 1", "racing", "driver", "lap", "podium", "qualifying",
			"grand prix", "verstappen", "hamilton", "ferrari", "mclaren", "red bull racing",
			"pit stop", "championship", "fia", "motorsport"},
		Sources: []string{"The Race", "Motorsport F1", "Racefans"},
	},
	{
		Name: "Tech",
		Keywords: []string{"ai", "artificial intelligence", "software", "startup", "chip", "processor",
			"google", "microsoft", "amazon", "cloud", "developer", "programming", "tech",
			"nvidia", "amd", "intel", "semiconductor"},
		Sources: []string{"The Verge", "Ars Technica", "WCCF Tech", "Slashdot"},
	},
	{
		Name: "Gaming",
		Keywords: []string{"game", "ps5", "xbox", "steam", "nintendo", "playstation", "gaming",
			"esports", "gamer", "rpg", "fps", "mmo", "release date", "trailer"},
		Sources: []string{"PC Gamer", "IGN"},
	},
	{
		Name: "Security",
		Keywords: []string{"hack", "breach", "malware", "ransomware", "cve", "vulnerability",
			"cybersecurity", "phishing", "exploit", "zero-day", "patch", "security"},
		Sources: []string{"Bleeping Computer"},
	},
	{
		Name: "Apple",
		Keywords: []string{"iphone", "mac", "ios", "macos", "apple", "ipad", "airpods", "watchos",
			"macbook", "imac", "apple watch", "app store", "tim cook"},
		Sources: []string{"Macrumors", "9to5 Mac"},
	},
	{
		Name: "Hardware",
		Keywords: []string{"gpu", "graphics card", "rtx", "radeon", "geforce", "benchmark",
			"overclock", "motherboard", "ram", "ssd", "cpu cooler"},
		Sources: []string{"Videocardz"},
	},
}

type Categorizer struct {
	categories []Category
	// Для каждой категории проверка принадлежности источника
	fromSource []func(string) bool
}

func New() *Categorizer {
	return NewWithCategories(defaultCategories)
}

// NewWithCategories нужен, если таблицу категорий хочется задать самому
func NewWithCategories(categories []Category) *Categorizer {
	c := &Categorizer{categories: categories}
	for _, category := range categories {
		sources := set.New(category.Sources...)
		c.fromSource = append(c.fromSource, func(name string) bool {
			return sources.Contains(name)
		})
	}
	return c
}

// Names возвращает имена категорий в порядке таблицы
func (c *Categorizer) Names() []string {
	names := make([]string, 0, len(c.categories))
	for _, category := range c.categories {
		names = append(names, category.Name)
	}
	return names
}

func (c *Categorizer) Categorize(title, content, source string) string {
	// Источник сильнее ключевых слов
	for i, category := range c.categories {
		if c.fromSource[i](source) {
			return category.Name
		}
	}

	text := strings.ToLower(title + " " + content)

	best, bestHits := model.Uncategorized, 0
	for _, category := range c.categories {
		hits := 0
		for _, keyword := range category.Keywords {
			if strings.Contains(text, keyword) {
				hits++
			}
		}

		if hits > bestHits {
			best, bestHits = category.Name, hits
		}
	}

	if bestHits < minKeywordHits {
		return model.Uncategorized
	}

	return best
}
