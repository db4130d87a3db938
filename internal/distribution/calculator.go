package distribution

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tracksplit/tracksplit-backend/pkg/db/models"
	"github.com/tracksplit/tracksplit-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Line is one recipient's computed share of a purchase, in minor currency units.
type Line struct {
	RecipientID   *uuid.UUID
	RecipientName string
	Role          enums.RecipientRole
	Percentage    decimal.Decimal
	AmountCents   int64
	Position      int
}

// Calculate splits totalCents across the ledger entries. Raw shares are rounded
// half-to-even to the cent, then the leftover delta is reconciled one cent at a
// time against the entries with the largest fractional remainder (ties broken
// by ledger order), so the returned amounts always sum to totalCents exactly.
func Calculate(totalCents int64, entries []models.SplitEntry) ([]Line, error) {
	if totalCents <= 0 {
		return nil, fmt.Errorf("total amount must be positive, got %d", totalCents)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("split ledger has no entries")
	}

	total := decimal.NewFromInt(totalCents)
	lines := make([]Line, len(entries))
	fractions := make([]decimal.Decimal, len(entries))

	var roundedSum int64
	for i, entry := range entries {
		raw := total.Mul(entry.Percentage).Div(oneHundred)
		rounded := raw.RoundBank(0)
		cents := rounded.IntPart()

		lines[i] = Line{
			RecipientID:   entry.RecipientID,
			RecipientName: entry.RecipientName,
			Role:          entry.Role,
			Percentage:    entry.Percentage,
			AmountCents:   cents,
			Position:      i,
		}
		fractions[i] = raw.Sub(raw.Floor())
		roundedSum += cents
	}

	delta := totalCents - roundedSum
	if delta != 0 {
		order := make([]int, len(lines))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return fractions[order[a]].GreaterThan(fractions[order[b]])
		})

		step := int64(1)
		if delta < 0 {
			step = -1
			delta = -delta
		}
		for i := int64(0); i < delta; i++ {
			idx := order[i%int64(len(order))]
			lines[idx].AmountCents += step
		}
	}

	for _, line := range lines {
		if line.AmountCents < 0 {
			return nil, fmt.Errorf("computed negative amount for %q", line.RecipientName)
		}
	}

	return lines, nil
}
