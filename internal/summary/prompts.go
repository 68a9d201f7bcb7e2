package summary

import (
	"strings"
	"unicode/utf8"
)

const (
	StyleBrief    = "brief"
	StyleStandard = "standard"
	StyleDetailed = "detailed"
	StyleBullets  = "bullets"

	// Больше модели не отдаем, иначе локальная модель долго думает
	maxPromptContent = 3000
)

var prompts = map[string]string{
	StyleBrief: `Summarize this news article in 1-2 sentences. Be extremely concise - capture only the single most important point.

Title: {title}

Content: {content}

One-line summary:`,

	StyleStandard: `Summarize the following news article in 4-5 concise sentences. Focus on the key facts and main points.

Title: {title}

Content: {content}

Summary:`,

	StyleDetailed: `Provide a comprehensive summary of this news article in 6-8 sentences. Include:
- The main news/announcement
- Key supporting details and context
- Why this matters or potential implications

Title: {title}

Content: {content}

Detailed summary:`,

	StyleBullets: `Summarize this news article as 3-5 bullet points. Each bullet should be a complete, standalone fact. Use "•" as the bullet character.

Title: {title}

Content: {content}

Key points:`,
}

// NormalizeStyle возвращает standard для неизвестного стиля
func NormalizeStyle(style string) string {
	if _, ok := prompts[style]; ok {
		return style
	}
	return StyleStandard
}

// Prompt подставляет заголовок и начало текста в шаблон выбранного стиля
func Prompt(style, title, content string) string {
	if utf8.RuneCountInString(content) > maxPromptContent {
		content = string([]rune(content)[:maxPromptContent])
	}

	return strings.NewReplacer("{title}", title, "{content}", content).
		Replace(prompts[NormalizeStyle(style)])
}
