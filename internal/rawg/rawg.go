// Package rawg is a pass-through client for the external game database. The
// backend never interprets the payload; it hands the upstream JSON straight
// back to the frontend, which caches titles and similar-game lists itself.
package rawg

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

const rawgBaseURL = "https://api.rawg.io/api"

// Fetch proxies a single GET to the game database. endpoint is the upstream
// path (e.g. "games"), query the raw query string from the frontend; the API
// key is appended server-side so it never ships to the client.
func Fetch(endpoint, query string) ([]byte, error) {
	apiKey := os.Getenv("RAWG_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RAWG_API_KEY is required")
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("invalid query string: %w", err)
	}
	values.Set("key", apiKey)

	requestURL := fmt.Sprintf("%s/%s?%s", rawgBaseURL, endpoint, values.Encode())

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("non-2xx status: %s - %s", resp.Status, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}
