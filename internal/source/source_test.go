package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestRegistryListsAdaptersSorted(t *testing.T) {
	adapters := All()
	if len(adapters) < 4 {
		t.Fatalf("expected the built-in adapters to self-register, got %d", len(adapters))
	}
	for i := 1; i < len(adapters); i++ {
		if adapters[i-1].Slug() >= adapters[i].Slug() {
			t.Errorf("adapters not sorted by slug: %q before %q", adapters[i-1].Slug(), adapters[i].Slug())
		}
	}
	for _, slug := range []string{"tiktok", "igdl", "ytmp3", "iplookup"} {
		if _, ok := Get(slug); !ok {
			t.Errorf("adapter %q not registered", slug)
		}
	}
	if _, ok := Get("nope"); ok {
		t.Error("unknown slug should not resolve")
	}
}

// Adapters must reject bad input with a ParamError before touching the
// network, so these cases run without any upstream.
func TestAdapterParamValidation(t *testing.T) {
	cases := []struct {
		slug    string
		params  url.Values
		wantMsg string
	}{
		{"tiktok", url.Values{}, "url parameter is required"},
		{"tiktok", url.Values{"url": {"https://example.com/watch"}}, "not a valid TikTok link"},
		{"igdl", url.Values{}, "url parameter is required"},
		{"igdl", url.Values{"url": {"https://tiktok.com/@a/video/1"}}, "not a valid Instagram post link"},
		{"ytmp3", url.Values{}, "url parameter is required"},
		{"ytmp3", url.Values{"url": {"https://vimeo.com/12345"}}, "not a valid YouTube link"},
		{"iplookup", url.Values{}, "ip parameter is required"},
		{"iplookup", url.Values{"ip": {"999.1.2.3"}}, "not a valid IPv4 or IPv6 address"},
		{"iplookup", url.Values{"ip": {"not-an-ip"}}, "not a valid IPv4 or IPv6 address"},
	}
	for _, tc := range cases {
		t.Run(tc.slug+"/"+tc.wantMsg, func(t *testing.T) {
			a, ok := Get(tc.slug)
			if !ok {
				t.Fatalf("adapter %q not registered", tc.slug)
			}
			_, err := a.Fetch(tc.params, context.Background())
			var pe *ParamError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParamError, got %v", err)
			}
			if !strings.Contains(pe.Message, tc.wantMsg) {
				t.Errorf("message %q does not contain %q", pe.Message, tc.wantMsg)
			}
		})
	}
}

func TestAdapterAcceptsCanonicalLinks(t *testing.T) {
	// Valid input must get past validation; the fetch then fails on the
	// cancelled context instead of a ParamError.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		slug  string
		key   string
		value string
	}{
		{"tiktok", "url", "https://www.tiktok.com/@user/video/7301234567890123456"},
		{"tiktok", "url", "https://vm.tiktok.com/ZM8abcdef/"},
		{"igdl", "url", "https://www.instagram.com/p/Cx1AbCdEfGh/"},
		{"igdl", "url", "https://instagram.com/reel/Cx1AbCdEfGh/"},
		{"ytmp3", "url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"ytmp3", "url", "https://youtu.be/dQw4w9WgXcQ"},
		{"iplookup", "ip", "8.8.8.8"},
		{"iplookup", "ip", "2606:4700:4700::1111"},
	}
	for _, tc := range cases {
		t.Run(tc.slug+"/"+tc.value, func(t *testing.T) {
			a, _ := Get(tc.slug)
			_, err := a.Fetch(url.Values{tc.key: {tc.value}}, ctx)
			if err == nil {
				t.Fatal("expected an error from the cancelled context")
			}
			var pe *ParamError
			if errors.As(err, &pe) {
				t.Errorf("valid input rejected as ParamError: %v", pe)
			}
		})
	}
}

func TestFailureMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", context.DeadlineExceeded, "upstream request timed out"},
		{"rate limited", errSourceRateLimited, "rate limiting requests"},
		{"rejected", fmt.Errorf("%w: status 500", errSourceRejected), "upstream request failed"},
		{"malformed", fmt.Errorf("%w: bad json", errSourceMalformed), "unreadable response"},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.example.com"}, "could not be resolved: api.example.com"},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), "connection refused"},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), "connection reset"},
		{"other", errors.New("boom"), "upstream request failed: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FailureMessage(tc.err)
			if !strings.Contains(got, tc.want) {
				t.Errorf("FailureMessage(%v) = %q, want it to contain %q", tc.err, got, tc.want)
			}
		})
	}
}
