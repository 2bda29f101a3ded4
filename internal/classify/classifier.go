// Package classify holds the pure pattern-matching side of the engine:
// deciding whether observed traffic or rendered text indicates a message
// send, a limit episode, or an announced recovery delay.
package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

// limitPatterns cover the limit phrasings the monitored service renders,
// in both English and Chinese. Classification is a union: any match means
// the text announces a limit.
var limitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)you('ve| have)? (reached|hit|exceeded)`),
	regexp.MustCompile(`(?i)rate limit`),
	regexp.MustCompile(`(?i)too many (requests|messages)`),
	regexp.MustCompile(`(?i)usage limit`),
	regexp.MustCompile(`(?i)message limit`),
	regexp.MustCompile(`(?i)out of messages`),
	regexp.MustCompile(`(?i)please (wait|try again)`),
	regexp.MustCompile(`限制`),
	regexp.MustCompile(`超出`),
	regexp.MustCompile(`已达上限`),
	regexp.MustCompile(`稍后再试`),
}

// quotaPatterns narrow a detected limit down to quota exhaustion.
var quotaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)quota`),
	regexp.MustCompile(`(?i)out of messages`),
	regexp.MustCompile(`配额`),
}

var (
	hourPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|小时)`)
	minutePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|分钟)`)
)

// sendPathFragments whitelist the endpoint shapes that carry a user
// message. Anything else, polling included, never counts as a send.
var sendPathFragments = []string{
	"/completion",
	"/append_message",
	"/retry_completion",
	"message",
	"/chat",
}

// IsLimitMessage reports whether text announces an active usage limit.
func IsLimitMessage(text string) bool {
	for _, pattern := range limitPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// IsMessageSendRequest reports whether an outbound request carries a user
// message. Only POST requests qualify; GET polling of the same endpoints
// must never be counted.
func IsMessageSendRequest(url, method string) bool {
	if !strings.EqualFold(method, "POST") {
		return false
	}
	lowered := strings.ToLower(url)
	for _, fragment := range sendPathFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// ParseResetDuration extracts an announced recovery delay from free text.
// The hour and minute quantities are scanned independently over the full
// text and summed, so "2 hours and 15 minutes" and "2小时30分钟" both
// resolve; a text with neither yields zero.
func ParseResetDuration(text string) time.Duration {
	var total time.Duration
	if match := hourPattern.FindStringSubmatch(text); match != nil {
		total += time.Duration(parseInt(match[1])) * time.Hour
	}
	if match := minutePattern.FindStringSubmatch(text); match != nil {
		total += time.Duration(parseInt(match[1])) * time.Minute
	}
	return total
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// LimitTypeFor classifies why a limit fired. An HTTP 429 is a rate limit;
// quota wording marks exhaustion; anything else stays unknown.
func LimitTypeFor(status int, text string) domain.LimitType {
	if status == 429 {
		return domain.LimitTypeRateLimit
	}
	for _, pattern := range quotaPatterns {
		if pattern.MatchString(text) {
			return domain.LimitTypeQuotaExceeded
		}
	}
	return domain.LimitTypeUnknown
}
