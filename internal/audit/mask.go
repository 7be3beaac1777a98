package audit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mask redacts value according to the sensitive-field policy for field:
//
//   - card fields keep their last 4 characters, the rest become the filler;
//     values of 4 characters or fewer become four filler characters
//   - cvv fields become the cvv placeholder
//   - any other sensitive field becomes the mask placeholder
//
// A nil value stays nil. Mask does not check that field is sensitive.
func (r *Rules) Mask(field string, value any) any {
	if value == nil {
		return nil
	}
	name := strings.ToLower(field)
	switch {
	case r.card.has(name):
		return r.maskCard(fmt.Sprint(value))
	case r.cvv.has(name):
		return r.cvvPlaceholder
	default:
		return r.maskPlaceholder
	}
}

func (r *Rules) maskCard(s string) string {
	n := utf8.RuneCountInString(s)
	if n <= 4 {
		return strings.Repeat(r.filler, 4)
	}
	runes := []rune(s)
	return strings.Repeat(r.filler, n-4) + string(runes[n-4:])
}
