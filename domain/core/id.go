package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific key types
type (
	// CountryCode is an ISO-3166 alpha-3 country code ("USA", "DEU").
	CountryCode string
	// IndicatorKey identifies a macroeconomic indicator series. World Bank
	// indicator codes ("NY.GDP.MKTP.KD.ZG") are used as canonical keys.
	IndicatorKey string
	// ResultID identifies a computed analysis artifact.
	ResultID ID
)

func (c CountryCode) String() string  { return string(c) }
func (k IndicatorKey) String() string { return string(k) }
func (id ResultID) String() string    { return ID(id).String() }

// ParseCountryCode parses a string into a CountryCode
func ParseCountryCode(s string) (CountryCode, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return "", fmt.Errorf("country code cannot be empty")
	}
	return CountryCode(s), nil
}

// ParseIndicatorKey parses a string into an IndicatorKey
func ParseIndicatorKey(s string) (IndicatorKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("indicator key cannot be empty")
	}
	return IndicatorKey(s), nil
}

// Canonical indicator keys used by the composite risk model. These mirror the
// World Bank indicator catalog the dashboard is fed from.
const (
	IndicatorGDPGrowth    IndicatorKey = "NY.GDP.MKTP.KD.ZG"
	IndicatorGDPPerCapita IndicatorKey = "NY.GDP.PCAP.CD"
	IndicatorUnemployment IndicatorKey = "SL.UEM.TOTL.ZS"
	IndicatorInflation    IndicatorKey = "FP.CPI.TOTL.ZG"
	IndicatorTradeBalance IndicatorKey = "NE.RSB.GNFS.ZS"
	IndicatorGovDebt      IndicatorKey = "GC.DOD.TOTL.GD.ZS"
	IndicatorInvestment   IndicatorKey = "NE.GDI.TOTL.ZS"
)
