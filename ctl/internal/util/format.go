package util

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bootusage/bootusage/ctl/pkg/config"
	"github.com/dsnet/golib/unitconv"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// FormatBytes formats a byte count with IEC prefixes, or as a plain number when --raw is set.
func FormatBytes(n int64) string {
	if viper.GetBool(config.RawKey) {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprintf("%sB", unitconv.FormatPrefix(float64(n), unitconv.IEC, 1))
}

// FormatDate formats a timestamp as a local date, or as RFC3339 when --raw is set.
func FormatDate(t time.Time) string {
	if viper.GetBool(config.RawKey) {
		return t.Format(time.RFC3339)
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatAge describes how long ago t was, for example "3 days ago".
func FormatAge(t time.Time) string {
	return humanize.Time(t)
}
