package source

import (
	"errors"
	"fmt"
)

// Kind 抓取失敗的種類
type Kind string

const (
	KindInvalidURL     Kind = "invalid URL"
	KindBlockedHost    Kind = "blocked host"
	KindTimeout        Kind = "timeout"
	KindUpstreamStatus Kind = "upstream status"
	KindContentType    Kind = "content type"
	KindTransport      Kind = "transport"
)

// FetchError 無法取得輸入時回傳的錯誤
type FetchError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf 取出錯誤鏈中的 Kind，不是 FetchError 時回傳空字串
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func newFetchError(kind Kind, url string, err error) *FetchError {
	return &FetchError{Kind: kind, URL: url, Err: err}
}
