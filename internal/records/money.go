package records

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in cents.
type Money int64

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// String formats the amount with thousands grouping, e.g. "$120,000.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + moneyPrinter.Sprintf("$%d", v/100) + fmt.Sprintf(".%02d", v%100)
}
