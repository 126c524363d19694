package source

import (
	"context"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"::ffff:127.0.0.1", true},
		{"8.8.8.8", false},
		{"2606:4700:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrivateIP(net.ParseIP(tt.ip)))
		})
	}
}

func TestHostGuardBlocksLocalNames(t *testing.T) {
	g := NewHostGuard(false)

	for _, raw := range []string{
		"http://localhost/recipe",
		"http://printer.local/",
		"https://metadata.google.internal/",
		"http://127.0.0.1:8080/",
		"http://[::1]/",
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, KindBlockedHost, KindOf(g.Check(context.Background(), u)), raw)
	}
}

func TestHostGuardAllowsPublicLiteral(t *testing.T) {
	u, _ := url.Parse("https://93.184.216.34/recipe")
	assert.NoError(t, NewHostGuard(false).Check(context.Background(), u))

	local, _ := url.Parse("http://127.0.0.1/")
	assert.NoError(t, NewHostGuard(true).Check(context.Background(), local))
}

func TestHostGuardDialControl(t *testing.T) {
	g := NewHostGuard(false)

	assert.ErrorIs(t, g.DialControl("tcp4", "127.0.0.1:443", nil), errPrivateHost)
	assert.ErrorIs(t, g.DialControl("tcp6", "[fd00::1]:80", nil), errPrivateHost)
	assert.ErrorIs(t, g.DialControl("tcp4", "169.254.169.254:80", nil), errPrivateHost)
	assert.NoError(t, g.DialControl("tcp4", "93.184.216.34:443", nil))
	assert.Error(t, g.DialControl("tcp4", "no-port", nil))

	assert.NoError(t, NewHostGuard(true).DialControl("tcp4", "127.0.0.1:443", nil))
}

func TestParseURL(t *testing.T) {
	u, err := ParseURL("  https://example.com/cake  ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Hostname())

	for _, raw := range []string{"", "javascript:alert(1)", "file:///etc/passwd", "https://", "://bad"} {
		_, err := ParseURL(raw)
		assert.Equal(t, KindInvalidURL, KindOf(err), raw)
	}
}
