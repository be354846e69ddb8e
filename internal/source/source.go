// Package source holds the proxied upstream integrations. Each adapter is a
// thin fetch+parse wrapper registered under a slug; availability, key checks
// and metering all happen in the gate before an adapter runs.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
)

type Adapter interface {
	Slug() string
	Name() string
	Description() string
	Fetch(params url.Values, ctx context.Context) (any, error)
}

var (
	registry     = make(map[string]Adapter)
	registryLock sync.RWMutex
)

func Register(a Adapter) {
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, exists := registry[a.Slug()]; exists {
		panic(fmt.Sprintf("source adapter %s registered twice", a.Slug()))
	}
	registry[a.Slug()] = a
}

func Get(slug string) (Adapter, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	a, ok := registry[slug]
	return a, ok
}

func All() []Adapter {
	registryLock.RLock()
	defer registryLock.RUnlock()
	adapters := make([]Adapter, 0, len(registry))
	for _, a := range registry {
		adapters = append(adapters, a)
	}
	sort.Slice(adapters, func(i, j int) bool {
		return adapters[i].Slug() < adapters[j].Slug()
	})
	return adapters
}

// fetchJSON runs the request and decodes the body, translating upstream
// HTTP refusals into classified errors.
func fetchJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errSourceRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", errSourceRejected, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", errSourceMalformed, err)
	}
	return nil
}
