// Package eligibility derives which add-ons a booth offers, keeps requested
// quantities inside the booth's limits and flags advisory warnings.
package eligibility

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Eursukkul/booth-festa/internal/models"
)

// SessionCategories are the category labels that involve an in-person
// session with a visitor.
var SessionCategories = []string{"占い・スピリチュアル", "ボディケア・美容"}

// equipmentPrefix marks body-care booths whose exhibitors declare the
// equipment they bring.
const equipmentPrefix = "body_"

// Visibility says which add-on controls the form shows for a booth.
type Visibility struct {
	Staff     bool `json:"staff"`
	Chairs    bool `json:"chairs"`
	Power     bool `json:"power"`
	NoOptions bool `json:"noOptions"`
	Equipment bool `json:"equipment"`
}

func DeriveOptionVisibility(b *models.Booth) Visibility {
	if b == nil {
		return Visibility{NoOptions: true}
	}
	v := Visibility{
		Staff:     b.Limits.MaxStaff > 0,
		Chairs:    b.Limits.MaxChairs > 0,
		Power:     b.Limits.AllowPower,
		Equipment: strings.HasPrefix(b.ID, equipmentPrefix),
	}
	v.NoOptions = !v.Staff && !v.Chairs && !v.Power
	return v
}

// ClampQuantity bounds a requested add-on quantity to [1, limit]. An add-on
// with limit <= 0 is not offered and always yields 0.
func ClampQuantity(requested, limit int) int {
	if limit <= 0 {
		return 0
	}
	return min(max(requested, 1), limit)
}

// Toggle returns the quantity after switching an add-on on or off. Turning
// it on starts at 1; off, or an add-on that is not offered, is 0.
func Toggle(on bool, limit int) int {
	if !on || limit <= 0 {
		return 0
	}
	return 1
}

// Adjust applies an increment or decrement to an add-on that is on.
func Adjust(current, delta, limit int) int {
	return ClampQuantity(current+delta, limit)
}

// ClampPartyCount bounds an attending headcount. The minimum is one person
// and there is no upper bound.
func ClampPartyCount(n int) int {
	return max(n, 1)
}

func IsSessionCategory(category string) bool {
	return slices.Contains(SessionCategories, category)
}

// SessionWarning reports a session category chosen for a booth that does
// not allow sessions. It is advisory and never blocks a selection.
func SessionWarning(b *models.Booth, category string) bool {
	return b != nil && b.ProhibitSession && IsSessionCategory(category)
}

type WarningCode string

const (
	WarnSessionProhibited WarningCode = "session_prohibited"
	WarnOptionUnavailable WarningCode = "option_unavailable"
	WarnOverLimit         WarningCode = "over_limit"
	WarnUnknownBooth      WarningCode = "unknown_booth"
	WarnSoldOut           WarningCode = "sold_out"
)

// Warning is an advisory finding about a selection. Callers show it and ask
// for confirmation; none of them rejects the selection.
type Warning struct {
	Code    WarningCode `json:"code"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}

// Evaluate lists every warning that applies to sel under cfg, in a fixed
// order: booth, category, then add-ons.
func Evaluate(cfg models.EventConfig, sel models.Selection) []Warning {
	warnings := []Warning{}
	if sel.BoothID == "" {
		return warnings
	}
	booth := cfg.FindBooth(sel.BoothID)
	if booth == nil {
		return append(warnings, Warning{
			Code:    WarnUnknownBooth,
			Field:   "boothId",
			Message: fmt.Sprintf("booth %q is not in the catalog and is priced as no booth", sel.BoothID),
		})
	}
	if booth.SoldOut {
		warnings = append(warnings, Warning{
			Code:    WarnSoldOut,
			Field:   "boothId",
			Message: fmt.Sprintf("booth %q is sold out", booth.ID),
		})
	}
	if SessionWarning(booth, sel.Category) {
		warnings = append(warnings, Warning{
			Code:    WarnSessionProhibited,
			Field:   "category",
			Message: fmt.Sprintf("booth %q does not allow sessions; category %q involves one", booth.ID, sel.Category),
		})
	}

	quantity := func(field string, requested, limit int) {
		switch {
		case requested <= 0:
		case limit <= 0:
			warnings = append(warnings, Warning{
				Code:    WarnOptionUnavailable,
				Field:   field,
				Message: fmt.Sprintf("booth %q does not offer %s", booth.ID, field),
			})
		case requested > limit:
			warnings = append(warnings, Warning{
				Code:    WarnOverLimit,
				Field:   field,
				Message: fmt.Sprintf("%s requested %d exceeds booth limit %d", field, requested, limit),
			})
		}
	}
	quantity("staff", sel.Quantities.Staff, booth.Limits.MaxStaff)
	quantity("chairs", sel.Quantities.Chairs, booth.Limits.MaxChairs)

	if sel.Power && !booth.Limits.AllowPower {
		warnings = append(warnings, Warning{
			Code:    WarnOptionUnavailable,
			Field:   "power",
			Message: fmt.Sprintf("booth %q does not offer power; it is not charged", booth.ID),
		})
	}
	return warnings
}
