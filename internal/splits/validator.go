package splits

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

var (
	hundred    = decimal.NewFromInt(100)
	sumEpsilon = decimal.RequireFromString("0.01")

	producerFloor = decimal.NewFromInt(5)
	labelCeiling  = decimal.NewFromInt(50)
)

// EntryInput is one proposed (recipient, role, percentage) row.
type EntryInput struct {
	RecipientID   *uuid.UUID          `json:"recipient_id,omitempty"`
	RecipientName string              `json:"recipient_name"`
	Role          enums.RecipientRole `json:"role"`
	Percentage    decimal.Decimal     `json:"percentage"`
}

// ValidationResult is the outcome of checking a proposed split.
// Errors are structural and block any disbursement; Recommendations are
// advisory and only lower the score.
type ValidationResult struct {
	Valid           bool     `json:"valid"`
	Score           int      `json:"score"`
	Errors          []string `json:"errors"`
	Recommendations []string `json:"recommendations"`
}

// Validate checks a proposed split against the ledger invariants. It has no
// side effects and is safe to call repeatedly.
//
// Scoring starts at 100: a sum mismatch costs the full 100, each out-of-range
// percentage 20, each blank recipient name 10, each advisory flag 5. The score
// never goes below 0.
func Validate(entries []EntryInput) ValidationResult {
	result := ValidationResult{
		Errors:          []string{},
		Recommendations: []string{},
	}
	score := 100

	if len(entries) == 0 {
		result.Errors = append(result.Errors, "split has no entries")
		result.Score = 0
		return result
	}

	sum := decimal.Zero
	for i, entry := range entries {
		if strings.TrimSpace(entry.RecipientName) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d has a blank recipient name", i+1))
			score -= 10
		}
		if entry.Percentage.IsNegative() || entry.Percentage.GreaterThan(hundred) {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %d percentage %s is outside [0, 100]", i+1, entry.Percentage))
			score -= 20
		}
		sum = sum.Add(entry.Percentage)
	}

	if sum.Sub(hundred).Abs().GreaterThan(sumEpsilon) {
		result.Errors = append(result.Errors, fmt.Sprintf("percentages sum to %s, expected 100.00", sum))
		score -= 100
	}

	if len(entries) == 1 {
		result.Recommendations = append(result.Recommendations, "single-recipient split: consider adding collaborators such as producers or songwriters")
		score -= 5
	}

	// a producer credited at 0% is the case most worth flagging; negative
	// shares are already structural range errors
	producerShare, hasProducer := roleShare(entries, enums.RecipientRoleProducer)
	if hasProducer && !producerShare.IsNegative() && producerShare.LessThan(producerFloor) {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf("producer share %s%% is below industry norms (15-25%% typical)", producerShare))
		score -= 5
	}

	labelShare, _ := roleShare(entries, enums.RecipientRoleLabel)
	if labelShare.GreaterThan(labelCeiling) {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf("label share %s%% above 50%% is atypical", labelShare))
		score -= 5
	}

	if score < 0 {
		score = 0
	}
	result.Score = score
	result.Valid = len(result.Errors) == 0
	return result
}

// roleShare sums the percentage credited to a role and reports whether any
// entry carries it, so a role present at 0% is distinguishable from absent.
func roleShare(entries []EntryInput, role enums.RecipientRole) (decimal.Decimal, bool) {
	share := decimal.Zero
	present := false
	for _, entry := range entries {
		if entry.Role == role {
			share = share.Add(entry.Percentage)
			present = true
		}
	}
	return share, present
}
