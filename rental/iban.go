package rental

import (
	"regexp"
	"strings"
)

var germanIBAN = regexp.MustCompile(`^DE\d{20}$`)

// NormalizeIBAN strips blanks and upper-cases the account identifier.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
}

// ValidIBAN checks the German IBAN format and its mod-97 check digits.
// An empty value is valid and means cash payment.
func ValidIBAN(iban string) bool {
	iban = NormalizeIBAN(iban)
	if iban == "" {
		return true
	}
	if !germanIBAN.MatchString(iban) {
		return false
	}
	rearranged := iban[4:] + iban[:4]
	rest := 0
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			v := int(r-'A') + 10
			rest = (rest*100 + v) % 97
			continue
		}
		rest = (rest*10 + int(r-'0')) % 97
	}
	return rest == 1
}
