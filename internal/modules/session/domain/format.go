package domain

import (
	"fmt"
	"time"
)

// Countdown renders remaining time as m:ss, rounding partial seconds up.
func Countdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Clock renders d as m:ss, truncating partial seconds.
func Clock(d time.Duration) string {
	secs := wholeSeconds(d)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func Minutes(d time.Duration) string {
	return fmt.Sprintf("%dm", wholeSeconds(d)/60)
}

func MinutesSeconds(d time.Duration) string {
	secs := wholeSeconds(d)
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

func wholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
