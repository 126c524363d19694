package source

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

var (
	errUnsafeScheme = errors.New("only http and https schemes are allowed")
	errNoHost       = errors.New("URL has no host")
	errPrivateHost  = errors.New("URL targets a private or loopback address")
)

var (
	cgnat    = mustCIDR("100.64.0.0/10")
	v6unique = mustCIDR("fc00::/7")
	v6link   = mustCIDR("fe80::/10")
)

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic("invalid CIDR " + s + ": " + err.Error())
	}
	return n
}

// HostGuard 拒絕指向內部網路的網址
type HostGuard struct {
	allowPrivate bool
	resolver     *net.Resolver
}

// NewHostGuard 創建主機檢查；allowPrivate 只應在測試或內網部署時開啟
func NewHostGuard(allowPrivate bool) *HostGuard {
	return &HostGuard{allowPrivate: allowPrivate, resolver: net.DefaultResolver}
}

// ParseURL 解析並檢查 scheme 與主機
func ParseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, newFetchError(KindInvalidURL, rawURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, newFetchError(KindInvalidURL, rawURL, errUnsafeScheme)
	}
	if u.Hostname() == "" {
		return nil, newFetchError(KindInvalidURL, rawURL, errNoHost)
	}
	return u, nil
}

// Check 檢查主機：字面 IP 直接判斷，網域名稱則解析後逐一檢查
func (g *HostGuard) Check(ctx context.Context, u *url.URL) error {
	if g.allowPrivate {
		return nil
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return newFetchError(KindBlockedHost, u.String(), errPrivateHost)
	}

	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return newFetchError(KindBlockedHost, u.String(), errPrivateHost)
		}
		return nil
	}

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		// 解析失敗交給連線階段回報
		return nil
	}
	for _, a := range addrs {
		if IsPrivateIP(a.IP) {
			return newFetchError(KindBlockedHost, u.String(), errPrivateHost)
		}
	}
	return nil
}

// DialControl 供 net.Dialer.Control 使用，在連線前檢查實際撥號的 IP
func (g *HostGuard) DialControl(network, address string, _ syscall.RawConn) error {
	if g.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return errPrivateHost
	}
	return nil
}

// IsPrivateIP 回送、私有、鏈路本地、CGNAT 與未指定位址
func IsPrivateIP(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	return cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip)
}
