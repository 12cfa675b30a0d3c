package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DeadlineLayout is the storage format of EventConfig.EarlyBirdDeadline.
const DeadlineLayout = "2006-01-02 15:04:05"

// EventConfig is the whole booth catalog for one event. It is replaced as a
// unit; callers mutate a Clone and hand the copy back.
type EventConfig struct {
	EventName             string `json:"eventName,omitempty"`
	EventDate             string `json:"eventDate,omitempty"`
	EventLocation         string `json:"eventLocation,omitempty"`
	WorkerURL             string `json:"workerUrl,omitempty"`
	LiffID                string `json:"liffId,omitempty"`
	CurrentSpreadsheetID  string `json:"currentSpreadsheetId,omitempty"`
	DatabaseSpreadsheetID string `json:"databaseSpreadsheetId,omitempty"`

	EarlyBirdDeadline string     `json:"earlyBirdDeadline"`
	MemberDiscount    int        `json:"memberDiscount"`
	UnitPrices        UnitPrices `json:"unitPrices"`
	Categories        []string   `json:"categories"`
	Booths            []Booth    `json:"booths"`
}

type UnitPrices struct {
	Chair          int `json:"chair"`
	Power          int `json:"power"`
	Staff          int `json:"staff"`
	Party          int `json:"party"`
	SecondaryParty int `json:"secondaryParty"`
}

type Booth struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	Prices          BoothPrices `json:"prices"`
	Limits          BoothLimits `json:"limits"`
	ProhibitSession bool        `json:"prohibitSession,omitempty"`
	SoldOut         bool        `json:"soldOut,omitempty"`
}

type BoothPrices struct {
	Regular   int `json:"regular"`
	EarlyBird int `json:"earlyBird"`
}

// BoothLimits caps add-on quantities. A zero cap means the add-on is not
// offered for the booth at all.
type BoothLimits struct {
	MaxStaff   int  `json:"maxStaff"`
	MaxChairs  int  `json:"maxChairs"`
	AllowPower bool `json:"allowPower"`
}

// Section is a display group of booths sharing a location.
type Section struct {
	Location string  `json:"location"`
	Booths   []Booth `json:"booths"`
}

// Clone returns a deep copy of c.
func (c EventConfig) Clone() EventConfig {
	out := c
	if c.Categories != nil {
		out.Categories = append([]string{}, c.Categories...)
	}
	if c.Booths != nil {
		out.Booths = append([]Booth{}, c.Booths...)
	}
	return out
}

// Normalize returns c with nil Categories and Booths replaced by empty
// slices, the form Decode produces.
func (c EventConfig) Normalize() EventConfig {
	if c.Categories == nil {
		c.Categories = []string{}
	}
	if c.Booths == nil {
		c.Booths = []Booth{}
	}
	return c
}

// FindBooth returns the booth with the given id, or nil when id is empty or
// does not resolve.
func (c EventConfig) FindBooth(id string) *Booth {
	if id == "" {
		return nil
	}
	for i := range c.Booths {
		if c.Booths[i].ID == id {
			return &c.Booths[i]
		}
	}
	return nil
}

// Sections groups booths by location in order of first appearance.
func (c EventConfig) Sections() []Section {
	var sections []Section
	index := make(map[string]int)
	for _, b := range c.Booths {
		i, ok := index[b.Location]
		if !ok {
			i = len(sections)
			index[b.Location] = i
			sections = append(sections, Section{Location: b.Location})
		}
		sections[i].Booths = append(sections[i].Booths, b)
	}
	return sections
}

// ParseDeadline interprets EarlyBirdDeadline as a wall-clock time in loc.
func (c EventConfig) ParseDeadline(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DeadlineLayout, c.EarlyBirdDeadline, loc)
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate reports values that cannot be stored. Unique booth ids and
// category labels are expected but not enforced.
func (c EventConfig) Validate() error {
	var problems []string
	nonNegative := func(field string, v int) {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative (got %d)", field, v))
		}
	}
	// The literal file is UTF-8 text; other bytes cannot round-trip.
	validText := func(field, v string) {
		if !utf8.ValidString(v) {
			problems = append(problems, field+" is not valid UTF-8")
		}
	}

	validText("eventName", c.EventName)
	validText("eventDate", c.EventDate)
	validText("eventLocation", c.EventLocation)
	validText("workerUrl", c.WorkerURL)
	validText("liffId", c.LiffID)
	validText("currentSpreadsheetId", c.CurrentSpreadsheetID)
	validText("databaseSpreadsheetId", c.DatabaseSpreadsheetID)
	for i, cat := range c.Categories {
		validText(fmt.Sprintf("categories[%d]", i), cat)
	}

	if _, err := time.Parse(DeadlineLayout, c.EarlyBirdDeadline); err != nil {
		problems = append(problems, fmt.Sprintf("earlyBirdDeadline %q is not in YYYY-MM-DD HH:MM:SS form", c.EarlyBirdDeadline))
	}
	nonNegative("memberDiscount", c.MemberDiscount)
	nonNegative("unitPrices.chair", c.UnitPrices.Chair)
	nonNegative("unitPrices.power", c.UnitPrices.Power)
	nonNegative("unitPrices.staff", c.UnitPrices.Staff)
	nonNegative("unitPrices.party", c.UnitPrices.Party)
	nonNegative("unitPrices.secondaryParty", c.UnitPrices.SecondaryParty)

	for i, b := range c.Booths {
		prefix := fmt.Sprintf("booths[%d]", i)
		if b.ID == "" {
			problems = append(problems, prefix+".id is required")
		}
		validText(prefix+".id", b.ID)
		validText(prefix+".name", b.Name)
		validText(prefix+".location", b.Location)
		nonNegative(prefix+".prices.regular", b.Prices.Regular)
		nonNegative(prefix+".prices.earlyBird", b.Prices.EarlyBird)
		nonNegative(prefix+".limits.maxStaff", b.Limits.MaxStaff)
		nonNegative(prefix+".limits.maxChairs", b.Limits.MaxChairs)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
