package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/JzuvGTI/jzrestapi/internal/client"
	"github.com/dlclark/regexp2"
)

func init() {
	Register(&tiktokAdapter{})
}

var tiktokURLPattern = regexp2.MustCompile(
	`^https?://(www\.|vm\.|vt\.|m\.)?tiktok\.com/\S+$`, regexp2.ECMAScript)

type tiktokAdapter struct{}

func (a *tiktokAdapter) Slug() string { return "tiktok" }
func (a *tiktokAdapter) Name() string { return "TikTok Downloader" }
func (a *tiktokAdapter) Description() string {
	return "Download TikTok videos without watermark"
}

type tiktokUpstream struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Title  string `json:"title"`
		Play   string `json:"play"`
		Wmplay string `json:"wmplay"`
		Music  string `json:"music"`
		Author struct {
			UniqueID string `json:"unique_id"`
			Nickname string `json:"nickname"`
		} `json:"author"`
	} `json:"data"`
}

type TiktokResult struct {
	Title         string `json:"title"`
	VideoURL      string `json:"video_url"`
	WatermarkURL  string `json:"watermark_url,omitempty"`
	MusicURL      string `json:"music_url,omitempty"`
	AuthorID      string `json:"author_id"`
	AuthorName    string `json:"author_name"`
}

func (a *tiktokAdapter) Fetch(params url.Values, ctx context.Context) (any, error) {
	target := params.Get("url")
	if target == "" {
		return nil, NewParamError("url parameter is required")
	}
	if matched, _ := tiktokURLPattern.MatchString(target); !matched {
		return nil, NewParamError("url is not a valid TikTok link")
	}

	httpClient, err := client.GetHTTPClientSystemProxy(false)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.tikwm.com/api/?url="+url.QueryEscape(target), nil)

	var upstream tiktokUpstream
	if err := fetchJSON(httpClient, req, &upstream); err != nil {
		return nil, err
	}
	if upstream.Code != 0 {
		return nil, NewParamError("tiktok video not found: %s", upstream.Msg)
	}
	return TiktokResult{
		Title:        upstream.Data.Title,
		VideoURL:     upstream.Data.Play,
		WatermarkURL: upstream.Data.Wmplay,
		MusicURL:     upstream.Data.Music,
		AuthorID:     upstream.Data.Author.UniqueID,
		AuthorName:   upstream.Data.Author.Nickname,
	}, nil
}
