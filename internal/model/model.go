package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Категория по умолчанию, если ни источник ни ключевые слова не подошли
const Uncategorized = "uncategorized"

// Сырой элемент, полученный из ленты или API агрегатора
type Item struct {
	// Имя источника из конфига
	Source string
	Title  string
	Link   string
	// Текст из ленты либо полный текст статьи
	Content string
	// Категории, которые проставил сам источник
	Categories []string
	// Контент уже прошел через цепочку обхода пейволла на этапе сбора
	Acquired bool
}

// Статья, как она хранится у нас в базе
type Article struct {
	ID       string
	Source   string
	Title    string
	URL      string
	Content  string
	Category string
	// Пустая строка, пока summary не сгенерировано
	Summary string
	// ID канонической статьи, если эта статья дубликат
	DuplicateOf string
	CreatedAt   time.Time
	// Нулевое время, пока summary нет
	SummarizedAt time.Time
}

func (a Article) Summarized() bool {
	return a.Summary != ""
}

func (a Article) IsDuplicate() bool {
	return a.DuplicateOf != ""
}

// ArticleID возвращает детерминированный идентификатор статьи:
// первые 16 hex-символов sha256 от URL.
func ArticleID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}
