package utils

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 12 * month
)

// Indonesian magnitudes for humanize.CustomRelTime.
var idMagnitudes = []humanize.RelTimeMagnitude{
	{D: 10 * time.Second, Format: "baru saja", DivBy: time.Second},
	{D: time.Minute, Format: "%d detik %s", DivBy: time.Second},
	{D: time.Hour, Format: "%d menit %s", DivBy: time.Minute},
	{D: day, Format: "%d jam %s", DivBy: time.Hour},
	{D: week, Format: "%d hari %s", DivBy: day},
	{D: month, Format: "%d minggu %s", DivBy: week},
	{D: year, Format: "%d bulan %s", DivBy: month},
	{D: math.MaxInt64, Format: "%d tahun %s", DivBy: year},
}

// RelativeTime renders t relative to now in Indonesian, e.g. "3 jam yang lalu".
func RelativeTime(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "yang lalu", "lagi", idMagnitudes)
}
