package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPResolver looks up user profiles over the directory service's REST API.
type HTTPResolver struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPResolver(baseURL string) *HTTPResolver {
	return &HTTPResolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPResolver) GetUsersByIDs(ctx context.Context, userIDs []string) ([]*User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(userIDs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/users?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory request: unexpected status %d", res.StatusCode)
	}

	var body struct {
		Users []*User `json:"users"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("directory response: %w", err)
	}

	return body.Users, nil
}
