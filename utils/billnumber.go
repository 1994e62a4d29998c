package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstBillNumber is issued to a user's very first bill.
const FirstBillNumber = 1001

// NextBillNumber derives the next sequential bill number ("B" + integer)
// from the user's most recent one. An empty or unparsable previous number
// restarts the sequence at B1001.
func NextBillNumber(last string) string {
	if last == "" {
		return fmt.Sprintf("B%d", FirstBillNumber)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, "B"))
	if err != nil {
		return fmt.Sprintf("B%d", FirstBillNumber)
	}
	return fmt.Sprintf("B%d", n+1)
}
