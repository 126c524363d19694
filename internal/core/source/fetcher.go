package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

// Page 抓取到的網頁
type Page struct {
	URL       string `json:"url"`
	FinalURL  string `json:"finalUrl"`
	HTML      string `json:"html"`
	Truncated bool   `json:"truncated"`
	FromCache bool   `json:"-"`
}

// Fetcher 網頁抓取器，不重試
type Fetcher struct {
	client   *resty.Client
	guard    *HostGuard
	cache    *PageCache
	maxChars int
	maxBytes int64
}

var htmlMediaTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
}

// NewFetcher 創建網頁抓取器，cache 可為 nil
func NewFetcher(cfg config.FetchConfig, cache *PageCache) *Fetcher {
	guard := NewHostGuard(cfg.AllowPrivateHosts)
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}

	client := resty.New().
		SetTransport(newTransport(guard)).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5").
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			// 每次轉址都重新檢查主機
			return guard.Check(req.Context(), req.URL)
		}))

	return &Fetcher{
		client:   client,
		guard:    guard,
		cache:    cache,
		maxChars: cfg.MaxChars,
		maxBytes: maxBytes,
	}
}

// newTransport 撥號時再檢查一次 IP，DNS 在 Check 之後改變也會被擋下
func newTransport(guard *HostGuard) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if guard.allowPrivate {
		return transport
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   guard.DialControl,
	}
	transport.DialContext = dialer.DialContext
	// 經由 proxy 時撥號對象是 proxy，無法檢查目標 IP
	transport.Proxy = nil
	return transport
}

// Fetch 取得網頁 HTML；失敗時回傳帶 Kind 的 *FetchError
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	target := u.String()

	if err := f.guard.Check(ctx, u); err != nil {
		common.LogWarn("Blocked fetch target", zap.String("url", target))
		return nil, err
	}

	if page, ok := f.cache.Get(ctx, target); ok {
		return page, nil
	}

	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return nil, classifyTransportError(target, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &FetchError{Kind: KindUpstreamStatus, URL: target, StatusCode: resp.StatusCode()}
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBytes))
	if err != nil {
		return nil, classifyTransportError(target, err)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(raw).String()
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !htmlMediaTypes[strings.ToLower(mediaType)] {
		return nil, newFetchError(KindContentType, target, fmt.Errorf("unexpected content type %q", contentType))
	}

	decoded, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, newFetchError(KindContentType, target, err)
	}
	text, err := io.ReadAll(decoded)
	if err != nil {
		return nil, newFetchError(KindContentType, target, err)
	}

	page := &Page{URL: target, FinalURL: target, HTML: string(text)}
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		page.FinalURL = resp.RawResponse.Request.URL.String()
	}
	page.HTML, page.Truncated = truncateRunes(page.HTML, f.maxChars)

	common.LogInfo("Fetched page",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode()),
		zap.Int("chars", utf8.RuneCountInString(page.HTML)),
		zap.Bool("truncated", page.Truncated),
		zap.Duration("duration", time.Since(start)),
	)

	f.cache.Set(ctx, page)
	return page, nil
}

// classifyTransportError 區分逾時、被擋的轉址與其他連線錯誤
func classifyTransportError(target string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, errPrivateHost) {
		return newFetchError(KindBlockedHost, target, errPrivateHost)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newFetchError(KindTimeout, target, err)
	}
	return newFetchError(KindTransport, target, err)
}

// truncateRunes 以字元數截斷
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	i, n := 0, 0
	for i < len(s) && n < max {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return s[:i], true
}
