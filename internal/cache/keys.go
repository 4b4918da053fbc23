package cache

import "fmt"

// RateLimitKey namespaces a rate-limit counter for one client identity.
func RateLimitKey(subject string) string {
	return fmt.Sprintf("nutrieye:ratelimit:%s", subject)
}
