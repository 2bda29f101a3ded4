package classify

import "strings"

// ObservedRequest is an outbound request reported by the interception
// feed before it is sent.
type ObservedRequest struct {
	URL    string
	Method string
}

// ObservedResponse is a completed response reported by the interception
// feed. Header names are matched case-insensitively; Body carries however
// much of the response text the feed captured, possibly empty.
type ObservedResponse struct {
	URL     string
	Status  int
	Headers map[string]string
	Body    string
}

// Header returns the named header value, or empty when absent.
func (r ObservedResponse) Header(name string) string {
	for key, value := range r.Headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}
