package capability

import (
	"io"
	"net/http"
	"time"
)

const (
	transportRetries = 2
	transportBackoff = 500 * time.Millisecond
)

// retryingTransport re-sends a request whose response carries a
// retryable server-side status. This is a connection-layer concern: the
// application retry loop never sees the retried statuses unless the
// transport budget is exhausted too.
type retryingTransport struct {
	next http.RoundTripper
}

func (t *retryingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	for attempt := 0; attempt < transportRetries; attempt++ {
		if err != nil || !retryableStatus(resp.StatusCode) || req.GetBody == nil {
			break
		}
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			break
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(transportBackoff):
		}
		req.Body = body
		resp, err = t.next.RoundTrip(req)
	}
	return resp, err
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
