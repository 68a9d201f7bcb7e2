// Package markup помогает собирать сообщения в разметке MarkdownV2 телеграма.
package markup

import (
	"fmt"
	"strings"
)

// Символы, которые MarkdownV2 требует экранировать в любом месте текста
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var replacer = newReplacer(specialChars)

func newReplacer(chars string) *strings.Replacer {
	pairs := make([]string, 0, len(chars)*2)
	for _, c := range chars {
		pairs = append(pairs, string(c), "\\"+string(c))
	}
	return strings.NewReplacer(pairs...)
}

// Функция которая делает escape спец символы markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Bold экранирует текст и выделяет его жирным
func Bold(src string) string {
	return fmt.Sprintf("*%s*", EscapeForMarkdown(src))
}
