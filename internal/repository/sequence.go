package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document numbers are date-scoped: PREFIX-YYYYMMDD-NNNN, zero-padded to
// width 4. Transactions, returns and transfers all share this format, each
// with its own prefix and its own per-day counter.

// FormatNumber renders the n-th number of the day for the given prefix.
func FormatNumber(prefix string, date time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), n)
}

// SequenceOf extracts the trailing counter from a formatted number.
func SequenceOf(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed document number %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}

// dayPattern is the LIKE pattern matching every number of one day.
func dayPattern(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s-%%", prefix, date.Format("20060102"))
}
