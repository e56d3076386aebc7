package domain

import "math"

// PriceEpsilonCents is the tolerance used when comparing client-claimed
// prices against authoritative totals. Strictly under one penny, so only
// sub-penny float noise passes; a claim off by a whole penny is a mismatch.
const PriceEpsilonCents int64 = 1

// PoundsToCents converts a decimal pound amount, as claimed by a client,
// into pence.
func PoundsToCents(pounds float64) int64 {
	return int64(math.Round(pounds * 100))
}

// CentsToPounds renders pence as a decimal pound amount for display and for
// the payment provider's line items.
func CentsToPounds(cents int64) float64 {
	return float64(cents) / 100
}

// PriceMatches reports whether a claimed amount agrees with the
// authoritative amount within the epsilon.
func PriceMatches(authoritativeCents, claimedCents int64) bool {
	diff := authoritativeCents - claimedCents
	if diff < 0 {
		diff = -diff
	}
	return diff < PriceEpsilonCents
}
