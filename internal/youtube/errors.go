package youtube

import "fmt"

// FetchError reports a network or HTTP failure that survived the retry
// budget. It aborts the whole request; partial pages are discarded.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("youtube %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube %s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// QuotaExceededError reports that the provider's daily quota is exhausted.
// It is never retried.
type QuotaExceededError struct {
	Op string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("youtube %s rejected: daily API quota exceeded", e.Op)
}
