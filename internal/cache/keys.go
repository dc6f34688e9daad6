package cache

import "fmt"

func CallKey(callID string) string {
	return fmt.Sprintf("recording:call:%s", callID)
}

func UserKey(userID string) string {
	return fmt.Sprintf("recording:user:%s", userID)
}

// RateLimitKey names the counter for one API key prefix in one fixed window.
func RateLimitKey(keyPrefix string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", keyPrefix, window)
}
