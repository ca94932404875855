package validators

import (
	"net/http"
	"strings"
)

// APIKeyHeader carries machine credentials.
const APIKeyHeader = "x-api-key"

// APIKeyFromRequest returns the trimmed x-api-key header value.
func APIKeyFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(APIKeyHeader))
}
