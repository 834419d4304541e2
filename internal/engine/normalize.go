package engine

import (
	"strings"

	"golang.org/x/text/currency"

	"github.com/abenov/tenderhub-eval/internal/model"
)

// resolveFxRate returns the conversion factor from a submission's currency
// to the tender base currency. The only sources are the rate frozen on the
// submission at bid opening and the identity rate for same-currency bids;
// rates are never fetched live. A missing or non-positive rate, or a
// currency code that is not valid ISO 4217, reports false and the caller
// degrades that bidder's cells to non-comparable.
func resolveFxRate(sub model.BidSubmission, baseCurrency string) (float64, bool) {
	code := strings.TrimSpace(sub.Currency)
	if !validCurrencyCode(code) {
		return 0, false
	}
	if sub.FxRate != nil && *sub.FxRate > 0 {
		return *sub.FxRate, true
	}
	if strings.EqualFold(code, strings.TrimSpace(baseCurrency)) {
		return 1, true
	}
	return 0, false
}

func validCurrencyCode(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}
