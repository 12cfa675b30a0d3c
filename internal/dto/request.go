package dto

import "github.com/Eursukkul/booth-festa/internal/models"

// MaxQuantity bounds every quantity a quote request may ask for. The
// validate tags below repeat it.
const MaxQuantity = 1000

// QuoteRequest is what the application form posts on every change.
type QuoteRequest struct {
	BoothID             string `json:"boothId"`
	Category            string `json:"category"`
	Staff               int    `json:"staff" validate:"gte=0,lte=1000"`
	Chairs              int    `json:"chairs" validate:"gte=0,lte=1000"`
	Power               bool   `json:"power"`
	PartyCount          int    `json:"partyCount" validate:"gte=0,lte=1000"`
	SecondaryPartyCount int    `json:"secondaryPartyCount" validate:"gte=0,lte=1000"`
}

func (r QuoteRequest) ToSelection() models.Selection {
	return models.Selection{
		BoothID:             r.BoothID,
		Category:            r.Category,
		Quantities:          models.Quantities{Staff: r.Staff, Chairs: r.Chairs},
		Power:               r.Power,
		PartyCount:          r.PartyCount,
		SecondaryPartyCount: r.SecondaryPartyCount,
	}
}
