package security

import (
	"regexp"
	"strings"
)

const redacted = "***REDACTED***"

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	ssnPattern    = regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`)
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|secret|token)["\s:=]+["']?([a-zA-Z0-9_-]{16,})["']?`)
	walletPattern = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)

	// Attribute names whose values never reach the logs
	sensitiveFields = []string{
		"api_key", "apikey", "secret", "token", "password",
		"tax_identification_number", "ssn", "number", "account_number",
		"routing_number", "iban", "birth_date", "private_key",
	}
)

// MaskString masks emails, SSNs, API keys and wallet addresses found in s
func MaskString(s string) string {
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	s = ssnPattern.ReplaceAllString(s, "***-**-****")
	s = apiKeyPattern.ReplaceAllString(s, "$1: "+redacted)
	s = walletPattern.ReplaceAllStringFunc(s, maskWalletAddress)
	return s
}

// MaskMap returns a copy of data with sensitive fields redacted and string
// values masked, recursing into nested maps and slices.
func MaskMap(data map[string]any) map[string]any {
	masked := make(map[string]any, len(data))
	for k, v := range data {
		if isSensitiveField(k) {
			masked[k] = redacted
			continue
		}
		masked[k] = SanitizeForLog(v)
	}
	return masked
}

// SanitizeForLog prepares a decoded JSON value for logging
func SanitizeForLog(data any) any {
	switch v := data.(type) {
	case string:
		return MaskString(v)
	case map[string]any:
		return MaskMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = SanitizeForLog(item)
		}
		return out
	default:
		return data
	}
}

// MaskAPIKey masks an API key showing only the first 4 chars
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "***@***.***"
	}
	domainParts := strings.Split(domain, ".")
	maskedDomain := maskPartial(domainParts[0], 1) + "." + domainParts[len(domainParts)-1]
	return maskPartial(local, 2) + "@" + maskedDomain
}

func maskWalletAddress(addr string) string {
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func maskPartial(s string, showChars int) string {
	if len(s) <= showChars {
		return strings.Repeat("*", len(s))
	}
	return s[:showChars] + strings.Repeat("*", len(s)-showChars)
}

func isSensitiveField(field string) bool {
	lower := strings.ToLower(field)
	for _, sensitive := range sensitiveFields {
		if lower == sensitive || strings.HasSuffix(lower, "_"+sensitive) {
			return true
		}
	}
	return false
}
