package source

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/JzuvGTI/jzrestapi/internal/client"
)

func init() {
	Register(&ipLookupAdapter{})
}

type ipLookupAdapter struct{}

func (a *ipLookupAdapter) Slug() string { return "iplookup" }
func (a *ipLookupAdapter) Name() string { return "IP Lookup" }
func (a *ipLookupAdapter) Description() string {
	return "Geolocation and network details for an IP address"
}

type ipLookupUpstream struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	AS         string  `json:"as"`
	Query      string  `json:"query"`
}

type IPLookupResult struct {
	IP       string  `json:"ip"`
	Country  string  `json:"country"`
	Region   string  `json:"region"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	ISP      string  `json:"isp"`
	Org      string  `json:"org,omitempty"`
	ASN      string  `json:"asn,omitempty"`
}

func (a *ipLookupAdapter) Fetch(params url.Values, ctx context.Context) (any, error) {
	ip := params.Get("ip")
	if ip == "" {
		return nil, NewParamError("ip parameter is required")
	}
	if net.ParseIP(ip) == nil {
		return nil, NewParamError("ip is not a valid IPv4 or IPv6 address")
	}

	httpClient, err := client.GetHTTPClientSystemProxy(false)
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		"http://ip-api.com/json/"+url.PathEscape(ip), nil)

	var upstream ipLookupUpstream
	if err := fetchJSON(httpClient, req, &upstream); err != nil {
		return nil, err
	}
	if upstream.Status != "success" {
		return nil, NewParamError("ip lookup failed: %s", upstream.Message)
	}
	return IPLookupResult{
		IP:       upstream.Query,
		Country:  upstream.Country,
		Region:   upstream.RegionName,
		City:     upstream.City,
		Lat:      upstream.Lat,
		Lon:      upstream.Lon,
		Timezone: upstream.Timezone,
		ISP:      upstream.ISP,
		Org:      upstream.Org,
		ASN:      upstream.AS,
	}, nil
}
