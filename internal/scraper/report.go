package scraper

import "time"

type State int32

const (
	StateIdle State = iota
	StateFetch
	StateAcquire
	StateDedupAndSave
	StateSummarizeNew
	StateRetryPending
	StateCleanup
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetch:
		return "fetch"
	case StateAcquire:
		return "acquire"
	case StateDedupAndSave:
		return "dedup_and_save"
	case StateSummarizeNew:
		return "summarize_new"
	case StateRetryPending:
		return "retry_pending"
	case StateCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Итоги одного цикла
type Report struct {
	Fetched int
	// Сколько записей получили полный текст на этапе acquire
	Acquired   int
	New        int
	Duplicates int
	Existing   int
	Summarized int
	Retried    int
	Cleaned    int64
	Duration   time.Duration
}
