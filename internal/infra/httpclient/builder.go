package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// BuildGet joins base and path segments, encodes the query and returns a GET request.
func BuildGet(ctx context.Context, base string, segments []string, query url.Values) (*http.Request, error) {
	if strings.TrimSpace(base) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: base,
			Err:  err,
		}
	}

	if len(segments) > 0 {
		u = u.JoinPath(segments...)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: u.String(),
			Err:  err,
		}
	}
	return req, nil
}
