package bridge

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	resourceNamePattern = regexp.MustCompile(`[a-z]+`)
	identifierPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Path segments that name a resource under a different discriminator
var hintAliases = map[string]string{
	"history": TypeTransactionHistory,
	"event":   TypeWebhookEvent,
	"log":     TypeWebhookEventDeliveryLog,
}

// ResourceHintForPath derives the expected resource type from a request path
// relative to the API base, e.g. "customers/c1/wallets" hints "wallet".
// It returns "" when the path names no registered type.
func ResourceHintForPath(reg *Registry, path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return ""
	}

	name := strings.TrimSuffix(resourceSegment(parts), "s")
	if alias, ok := hintAliases[name]; ok {
		name = alias
	}
	if reg.Has(name) {
		return name
	}
	return ""
}

func resourceSegment(parts []string) string {
	namedPair := len(parts) >= 2 && resourceNamePattern.MatchString(parts[0]) && identifierPattern.MatchString(parts[1])
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) == 2 && namedPair:
		return parts[0]
	case len(parts) == 2:
		return parts[1]
	case namedPair:
		return parts[2]
	default:
		return parts[0]
	}
}
