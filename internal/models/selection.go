package models

// Selection is one visitor's in-progress choice on the application form.
// An empty BoothID or Category means nothing has been chosen yet.
type Selection struct {
	BoothID             string     `json:"boothId"`
	Category            string     `json:"category"`
	Quantities          Quantities `json:"quantities"`
	Power               bool       `json:"power"`
	PartyCount          int        `json:"partyCount"`
	SecondaryPartyCount int        `json:"secondaryPartyCount"`
}

type Quantities struct {
	Staff  int `json:"staff"`
	Chairs int `json:"chairs"`
}
