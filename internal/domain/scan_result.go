package domain

import (
	"fmt"
	"time"
)

// ScanStatus discriminates the ScanResult union.
type ScanStatus string

const (
	// ScanStatusOpportunities the scan computed a list of opportunities.
	ScanStatusOpportunities ScanStatus = "opportunities"
	// ScanStatusFailure the scan failed; Reason explains why.
	ScanStatusFailure ScanStatus = "failure"
)

// ScanResult snapshot handed to consumers after every scan.
// Either Opportunities (possibly empty) or a Failure with a reason.
type ScanResult struct {
	ID            string                 `json:"id"`
	Status        ScanStatus             `json:"status"`
	Opportunities []ArbitrageOpportunity `json:"opportunities"`
	Reason        string                 `json:"reason,omitempty"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    time.Time              `json:"finished_at"`
}

// NewOpportunitiesResult creates a successful scan result.
func NewOpportunitiesResult(id string, opportunities []ArbitrageOpportunity, startedAt, finishedAt time.Time) ScanResult {
	if opportunities == nil {
		opportunities = []ArbitrageOpportunity{}
	}

	return ScanResult{
		ID:            id,
		Status:        ScanStatusOpportunities,
		Opportunities: opportunities,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
	}
}

// NewFailureResult creates a failed scan result.
func NewFailureResult(id string, reason string, startedAt, finishedAt time.Time) ScanResult {
	return ScanResult{
		ID:         id,
		Status:     ScanStatusFailure,
		Reason:     reason,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
}

// IsFailure reports whether the scan failed.
func (r ScanResult) IsFailure() bool {
	return r.Status == ScanStatusFailure
}

// UserMessage returns the text shown to users for this result.
func (r ScanResult) UserMessage() string {
	if r.IsFailure() {
		return fmt.Sprintf("scan failed, will retry: %s", r.Reason)
	}
	if len(r.Opportunities) == 0 {
		return "no arbitrage opportunities found at the moment"
	}

	return fmt.Sprintf("%d opportunities", len(r.Opportunities))
}

// ScanRecord bundles a journaled scan result with its journal index.
type ScanRecord struct {
	Index  uint64
	Result ScanResult
}
