package source

import (
	"context"
	"net/http"
	"net/url"

	"github.com/JzuvGTI/jzrestapi/internal/client"
	"github.com/dlclark/regexp2"
)

func init() {
	Register(&youtubeAdapter{})
}

// Capture group 4 is the 11-character video id.
var youtubeURLPattern = regexp2.MustCompile(
	`^https?://(www\.|m\.|music\.)?(youtube\.com/(watch\?v=|shorts/)|youtu\.be/)([\w-]{11})`, regexp2.ECMAScript)

type youtubeAdapter struct{}

func (a *youtubeAdapter) Slug() string { return "ytmp3" }
func (a *youtubeAdapter) Name() string { return "YouTube Audio" }
func (a *youtubeAdapter) Description() string {
	return "Extract audio streams from a YouTube video"
}

type youtubeUpstream struct {
	Title        string `json:"title"`
	Uploader     string `json:"uploader"`
	Duration     int    `json:"duration"`
	AudioStreams []struct {
		URL     string `json:"url"`
		Format  string `json:"format"`
		Quality string `json:"quality"`
		Bitrate int    `json:"bitrate"`
	} `json:"audioStreams"`
}

type YoutubeAudio struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
	Bitrate int    `json:"bitrate"`
}

type YoutubeResult struct {
	Title    string         `json:"title"`
	Uploader string         `json:"uploader"`
	Duration int            `json:"duration"`
	Audio    []YoutubeAudio `json:"audio"`
}

func (a *youtubeAdapter) Fetch(params url.Values, ctx context.Context) (any, error) {
	target := params.Get("url")
	if target == "" {
		return nil, NewParamError("url parameter is required")
	}
	match, _ := youtubeURLPattern.FindStringMatch(target)
	if match == nil {
		return nil, NewParamError("url is not a valid YouTube link")
	}
	videoID := match.GroupByNumber(4).String()

	httpClient, err := client.GetHTTPClientSystemProxy(false)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://pipedapi.kavin.rocks/streams/"+url.PathEscape(videoID), nil)

	var upstream youtubeUpstream
	if err := fetchJSON(httpClient, req, &upstream); err != nil {
		return nil, err
	}
	if len(upstream.AudioStreams) == 0 {
		return nil, NewParamError("no audio streams found for this video")
	}
	audio := make([]YoutubeAudio, 0, len(upstream.AudioStreams))
	for _, s := range upstream.AudioStreams {
		audio = append(audio, YoutubeAudio{URL: s.URL, Format: s.Format, Quality: s.Quality, Bitrate: s.Bitrate})
	}
	return YoutubeResult{
		Title:    upstream.Title,
		Uploader: upstream.Uploader,
		Duration: upstream.Duration,
		Audio:    audio,
	}, nil
}
