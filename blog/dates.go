package blog

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

var monthAbbr = map[string][12]string{
	"pt": {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	"es": {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// FormatDate renders t as "dd MMM yyyy" with the month abbreviated in the
// language of tag. Unknown languages fall back to English. A nil time
// renders as "". A nil loc means UTC.
func FormatDate(t *time.Time, tag language.Tag, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	base, _ := tag.Base()
	months, ok := monthAbbr[base.String()]
	if !ok {
		months = monthAbbr["en"]
	}
	lt := t.In(loc)
	return fmt.Sprintf("%02d %s %d", lt.Day(), months[lt.Month()-1], lt.Year())
}
