package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/JzuvGTI/jzrestapi/internal/client"
	"github.com/dlclark/regexp2"
)

func init() {
	Register(&instagramAdapter{})
}

var instagramURLPattern = regexp2.MustCompile(
	`^https?://(www\.)?instagram\.com/(p|reel|reels|tv)/[\w-]+`, regexp2.ECMAScript)

type instagramAdapter struct{}

func (a *instagramAdapter) Slug() string { return "igdl" }
func (a *instagramAdapter) Name() string { return "Instagram Downloader" }
func (a *instagramAdapter) Description() string {
	return "Download Instagram posts, reels and IGTV"
}

type instagramUpstream struct {
	Error bool `json:"error"`
	Media []struct {
		URL       string `json:"url"`
		Type      string `json:"type"`
		Thumbnail string `json:"thumbnail"`
	} `json:"media"`
}

type InstagramMedia struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

func (a *instagramAdapter) Fetch(params url.Values, ctx context.Context) (any, error) {
	target := params.Get("url")
	if target == "" {
		return nil, NewParamError("url parameter is required")
	}
	if matched, _ := instagramURLPattern.MatchString(target); !matched {
		return nil, NewParamError("url is not a valid Instagram post link")
	}

	// Instagram blocks datacenter IPs aggressively, this one goes through
	// the configured proxy when one is set.
	httpClient, err := client.GetHTTPClientSystemProxy(true)
	if err != nil {
		httpClient, err = client.GetHTTPClientSystemProxy(false)
		if err != nil {
			return nil, err
		}
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.igram.world/api/convert?url="+url.QueryEscape(target), nil)

	var upstream instagramUpstream
	if err := fetchJSON(httpClient, req, &upstream); err != nil {
		return nil, err
	}
	if upstream.Error || len(upstream.Media) == 0 {
		return nil, NewParamError("instagram post not found or private")
	}
	media := make([]InstagramMedia, 0, len(upstream.Media))
	for _, m := range upstream.Media {
		media = append(media, InstagramMedia{URL: m.URL, Type: m.Type, Thumbnail: m.Thumbnail})
	}
	return media, nil
}
