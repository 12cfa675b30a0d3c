// Package pricing computes the itemized fee of a booth application.
package pricing

import (
	"math"
	"time"

	"github.com/Eursukkul/booth-festa/internal/models"
)

type Kind string

const (
	KindBooth Kind = "booth"
	KindStaff Kind = "staff"
	KindChair Kind = "chair"
	KindPower Kind = "power"
	KindParty Kind = "party"
)

type LineItem struct {
	Kind      Kind   `json:"kind"`
	Label     string `json:"label"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unitPrice"`
	Amount    int    `json:"amount"`
}

// Quote is the priced breakdown of a Selection. BoothPrice is the tier price
// of the resolved booth, zero when no booth resolves.
type Quote struct {
	Total      int        `json:"total"`
	LineItems  []LineItem `json:"lineItems"`
	EarlyBird  bool       `json:"earlyBird"`
	BoothPrice int        `json:"boothPrice"`
}

// IsEarlyBird reports whether now falls on or before the configured
// deadline. The deadline is read as wall-clock time in now's location and
// compared at second precision. A deadline that does not parse closes the
// early-bird tier.
func IsEarlyBird(cfg models.EventConfig, now time.Time) bool {
	deadline, err := cfg.ParseDeadline(now.Location())
	if err != nil {
		return false
	}
	return !now.Truncate(time.Second).After(deadline)
}

// BoothPrice returns the price tier of b that applies.
func BoothPrice(b models.Booth, early bool) int {
	if early {
		return b.Prices.EarlyBird
	}
	return b.Prices.Regular
}

// mulSat and addSat clamp at math.MaxInt instead of wrapping. Operands are
// never negative.
func mulSat(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}

func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// ComputePrice prices sel against cfg at instant now.
//
// An unresolved booth id prices as no booth: only party attendance is
// charged. Power is charged only when the booth allows it. The secondary
// party count is never priced. Amounts and the total saturate at
// math.MaxInt.
func ComputePrice(cfg models.EventConfig, sel models.Selection, now time.Time) Quote {
	q := Quote{LineItems: []LineItem{}, EarlyBird: IsEarlyBird(cfg, now)}
	add := func(kind Kind, label string, qty, unit int) {
		item := LineItem{Kind: kind, Label: label, Quantity: qty, UnitPrice: unit, Amount: mulSat(qty, unit)}
		q.LineItems = append(q.LineItems, item)
		q.Total = addSat(q.Total, item.Amount)
	}

	if booth := cfg.FindBooth(sel.BoothID); booth != nil {
		q.BoothPrice = BoothPrice(*booth, q.EarlyBird)
		add(KindBooth, booth.Name, 1, q.BoothPrice)

		if sel.Quantities.Staff > 0 {
			add(KindStaff, "Additional staff", sel.Quantities.Staff, cfg.UnitPrices.Staff)
		}
		if sel.Quantities.Chairs > 0 {
			add(KindChair, "Chair rental", sel.Quantities.Chairs, cfg.UnitPrices.Chair)
		}
		if sel.Power && booth.Limits.AllowPower {
			add(KindPower, "Power supply", 1, cfg.UnitPrices.Power)
		}
	}

	if sel.PartyCount > 0 {
		add(KindParty, "After party", sel.PartyCount, cfg.UnitPrices.Party)
	}
	return q
}
