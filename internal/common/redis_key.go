package common

import "fmt"

func RedisKeyProfileStats(userID string) string {
	return fmt.Sprintf("profilestats:%s", userID)
}

func RedisKeyVisibility(userID string) string {
	return fmt.Sprintf("visibility:%s", userID)
}
