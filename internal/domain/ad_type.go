package domain

import "strings"

// AdType classifies the advertiser relative to the seller's industry.
type AdType string

const (
	AdTypeCore    AdType = "core"     // 同业广告, intra-industry
	AdTypeNonCore AdType = "non-core" // 异业广告, cross-industry
)

// Labels used by the finance ledger exports.
const (
	AdTypeCoreLabel    = "同业广告"
	AdTypeNonCoreLabel = "异业广告"
)

// String returns the string representation of AdType.
func (a AdType) String() string {
	return string(a)
}

// IsValid checks if the ad type is a valid value.
func (a AdType) IsValid() bool {
	return a == AdTypeCore || a == AdTypeNonCore
}

// Label returns the ledger label for the ad type.
func (a AdType) Label() string {
	switch a {
	case AdTypeCore:
		return AdTypeCoreLabel
	case AdTypeNonCore:
		return AdTypeNonCoreLabel
	default:
		return string(a)
	}
}

// ParseAdType accepts the canonical value or the ledger label.
func ParseAdType(s string) (AdType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "core", AdTypeCoreLabel:
		return AdTypeCore, true
	case "non-core", "noncore", "non_core", AdTypeNonCoreLabel:
		return AdTypeNonCore, true
	default:
		return "", false
	}
}
