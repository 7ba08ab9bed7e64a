package domain

import (
	"fmt"
	"strings"
	"time"
)

// Business-number prefixes for the two sequenced entities.
const (
	NumberPrefixTicket   = "TIC"
	NumberPrefixContract = "CTR"
)

// DivisionCode3 normalizes a division code to exactly three upper-case
// characters, truncating long codes and right-padding short ones with 'X'.
func DivisionCode3(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) > 3 {
		return code[:3]
	}
	for len(code) < 3 {
		code += "X"
	}
	return code
}

// SequencePeriod renders the {YY}{MM} month bucket a sequence counter lives in.
func SequencePeriod(asOf time.Time) string {
	return asOf.Format("0601")
}

// DocumentNumber renders a business number: {PREFIX}-{DIV3}-{YY}{MM}{SEQ4}.
// The 4-digit counter resets implicitly every month because it is scoped to
// the prefix+division+period bucket.
func DocumentNumber(prefix, divisionCode string, asOf time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%s%04d", prefix, DivisionCode3(divisionCode), SequencePeriod(asOf), seq)
}
