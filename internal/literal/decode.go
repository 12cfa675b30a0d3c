package literal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Eursukkul/booth-festa/internal/models"
)

// Decode parses the CONFIG literal embedded in text.
//
// Absent keys, null and undefined take the zero value of their field (empty
// string, 0, false, empty slice). Keys the model does not know are ignored.
// Any syntax or type error yields a *DecodeError and a zero EventConfig.
func Decode(text string) (models.EventConfig, error) {
	root, err := Parse(text)
	if err != nil {
		return models.EventConfig{}, err
	}
	b := &binder{}
	cfg := b.config(root)
	if b.err != nil {
		return models.EventConfig{}, b.err
	}
	return cfg, nil
}

// binder maps a Value tree onto the model. After the first failure every
// method is a no-op and err holds the failure.
type binder struct {
	err *DecodeError
}

func (b *binder) fail(v Value, path, format string, args ...any) {
	if b.err == nil {
		b.err = errorAt(v.Pos, "%s %s", path, fmt.Sprintf(format, args...))
	}
}

func (b *binder) str(v Value, path string) string {
	if b.err != nil {
		return ""
	}
	switch v.Kind {
	case Null:
		return ""
	case String:
		return v.Text
	}
	b.fail(v, path, "must be a string, found %s", v.Kind)
	return ""
}

func (b *binder) integer(v Value, path string) int {
	if b.err != nil {
		return 0
	}
	switch v.Kind {
	case Null:
		return 0
	case Number:
	default:
		b.fail(v, path, "must be a number, found %s", v.Kind)
		return 0
	}
	n, err := strconv.ParseInt(v.Text, 10, 64)
	if err != nil {
		b.fail(v, path, "must be a whole number, found %s", v.Text)
		return 0
	}
	if n < 0 {
		b.fail(v, path, "must not be negative, found %d", n)
		return 0
	}
	if n > math.MaxInt {
		b.fail(v, path, "is out of range")
		return 0
	}
	return int(n)
}

func (b *binder) boolean(v Value, path string) bool {
	if b.err != nil {
		return false
	}
	switch v.Kind {
	case Null:
		return false
	case Bool:
		return v.Bool
	}
	b.fail(v, path, "must be true or false, found %s", v.Kind)
	return false
}

// object checks that v is an object or absent and returns it.
func (b *binder) object(v Value, path string) Value {
	if b.err == nil && v.Kind != Null && v.Kind != Object {
		b.fail(v, path, "must be an object, found %s", v.Kind)
	}
	return v
}

func (b *binder) array(v Value, path string) []Value {
	if b.err != nil {
		return nil
	}
	switch v.Kind {
	case Null:
		return nil
	case Array:
		return v.Items
	}
	b.fail(v, path, "must be an array, found %s", v.Kind)
	return nil
}

func (b *binder) config(root Value) models.EventConfig {
	cfg := models.EventConfig{
		EventName:             b.str(root.Get("eventName"), "eventName"),
		EventDate:             b.str(root.Get("eventDate"), "eventDate"),
		EventLocation:         b.str(root.Get("eventLocation"), "eventLocation"),
		WorkerURL:             b.str(root.Get("workerUrl"), "workerUrl"),
		LiffID:                b.str(root.Get("liffId"), "liffId"),
		CurrentSpreadsheetID:  b.str(root.Get("currentSpreadsheetId"), "currentSpreadsheetId"),
		DatabaseSpreadsheetID: b.str(root.Get("databaseSpreadsheetId"), "databaseSpreadsheetId"),
		EarlyBirdDeadline:     b.str(root.Get("earlyBirdDeadline"), "earlyBirdDeadline"),
		MemberDiscount:        b.integer(root.Get("memberDiscount"), "memberDiscount"),
	}

	up := b.object(root.Get("unitPrices"), "unitPrices")
	cfg.UnitPrices = models.UnitPrices{
		Chair:          b.integer(up.Get("chair"), "unitPrices.chair"),
		Power:          b.integer(up.Get("power"), "unitPrices.power"),
		Staff:          b.integer(up.Get("staff"), "unitPrices.staff"),
		Party:          b.integer(up.Get("party"), "unitPrices.party"),
		SecondaryParty: b.integer(up.Get("secondaryParty"), "unitPrices.secondaryParty"),
	}

	categories := b.array(root.Get("categories"), "categories")
	cfg.Categories = make([]string, 0, len(categories))
	for i, item := range categories {
		path := fmt.Sprintf("categories[%d]", i)
		if item.Kind != String {
			b.fail(item, path, "must be a string, found %s", item.Kind)
		}
		cfg.Categories = append(cfg.Categories, b.str(item, path))
	}

	booths := b.array(root.Get("booths"), "booths")
	cfg.Booths = make([]models.Booth, 0, len(booths))
	for i, item := range booths {
		cfg.Booths = append(cfg.Booths, b.booth(item, fmt.Sprintf("booths[%d]", i)))
	}
	return cfg
}

func (b *binder) booth(v Value, path string) models.Booth {
	if v.Kind != Object {
		b.fail(v, path, "must be an object, found %s", v.Kind)
		return models.Booth{}
	}
	prices := b.object(v.Get("prices"), path+".prices")
	limits := b.object(v.Get("limits"), path+".limits")
	return models.Booth{
		ID:       b.str(v.Get("id"), path+".id"),
		Name:     b.str(v.Get("name"), path+".name"),
		Location: b.str(v.Get("location"), path+".location"),
		Prices: models.BoothPrices{
			Regular:   b.integer(prices.Get("regular"), path+".prices.regular"),
			EarlyBird: b.integer(prices.Get("earlyBird"), path+".prices.earlyBird"),
		},
		Limits: models.BoothLimits{
			MaxStaff:   b.integer(limits.Get("maxStaff"), path+".limits.maxStaff"),
			MaxChairs:  b.integer(limits.Get("maxChairs"), path+".limits.maxChairs"),
			AllowPower: b.boolean(limits.Get("allowPower"), path+".limits.allowPower"),
		},
		ProhibitSession: b.boolean(v.Get("prohibitSession"), path+".prohibitSession"),
		SoldOut:         b.boolean(v.Get("soldOut"), path+".soldOut"),
	}
}
