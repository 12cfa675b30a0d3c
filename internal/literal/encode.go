package literal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Eursukkul/booth-festa/internal/models"
)

const fileHeader = `/**
 * Booth reservation form configuration.
 * Booth definitions, prices and add-on limits.
 * Written by the admin console. Hand edits are fine; the next save
 * rewrites this file in canonical form.
 */
`

// Encode renders cfg as the canonical config file. Booth and category order
// is kept as given; prohibitSession and soldOut are written only when true
// and metadata strings only when non-empty.
func Encode(cfg models.EventConfig) string {
	w := &writer{}
	w.b.WriteString(fileHeader)
	w.line(0, "const %s = {", RootName)

	if cfg.EventName != "" || cfg.EventDate != "" || cfg.EventLocation != "" {
		w.comment("Event")
		w.optional("eventName", cfg.EventName)
		w.optional("eventDate", cfg.EventDate)
		w.optional("eventLocation", cfg.EventLocation)
		w.blank()
	}

	w.comment("Schedule (early-bird prices apply up to and including this instant)")
	w.line(1, "earlyBirdDeadline: %s,", quote(cfg.EarlyBirdDeadline))
	w.blank()

	w.comment("Member benefit (deducted when the confirmation mail is sent)")
	w.line(1, "memberDiscount: %d,", cfg.MemberDiscount)
	w.blank()

	w.comment("Add-on and attendance unit prices")
	w.line(1, "unitPrices: {")
	w.line(2, "chair: %d,", cfg.UnitPrices.Chair)
	w.line(2, "power: %d,", cfg.UnitPrices.Power)
	w.line(2, "staff: %d,", cfg.UnitPrices.Staff)
	w.line(2, "party: %d,", cfg.UnitPrices.Party)
	w.line(2, "secondaryParty: %d,", cfg.UnitPrices.SecondaryParty)
	w.line(1, "},")
	w.blank()

	w.comment("Categories (display order)")
	if len(cfg.Categories) == 0 {
		w.line(1, "categories: [],")
	} else {
		w.line(1, "categories: [")
		for _, c := range cfg.Categories {
			w.line(2, "%s,", quote(c))
		}
		w.line(1, "],")
	}
	w.blank()

	if cfg.WorkerURL != "" || cfg.LiffID != "" || cfg.CurrentSpreadsheetID != "" || cfg.DatabaseSpreadsheetID != "" {
		w.comment("System")
		w.optional("workerUrl", cfg.WorkerURL)
		w.optional("liffId", cfg.LiffID)
		w.optional("currentSpreadsheetId", cfg.CurrentSpreadsheetID)
		w.optional("databaseSpreadsheetId", cfg.DatabaseSpreadsheetID)
		w.blank()
	}

	w.comment("Booths (grouped on the form by location)")
	if len(cfg.Booths) == 0 {
		w.line(1, "booths: [],")
	} else {
		w.line(1, "booths: [")
		for _, b := range cfg.Booths {
			w.booth(b)
		}
		w.line(1, "],")
	}
	w.line(0, "};")
	return w.b.String()
}

type writer struct {
	b strings.Builder
}

func (w *writer) line(indent int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) blank() { w.b.WriteByte('\n') }

func (w *writer) comment(text string) { w.line(1, "// %s", text) }

func (w *writer) optional(key, value string) {
	if value != "" {
		w.line(1, "%s: %s,", key, quote(value))
	}
}

func (w *writer) booth(b models.Booth) {
	w.line(2, "{")
	w.line(3, "id: %s,", quote(b.ID))
	w.line(3, "name: %s,", quote(b.Name))
	w.line(3, "location: %s,", quote(b.Location))
	if b.ProhibitSession {
		w.line(3, "prohibitSession: true,")
	}
	if b.SoldOut {
		w.line(3, "soldOut: true,")
	}
	w.line(3, "prices: { regular: %d, earlyBird: %d },", b.Prices.Regular, b.Prices.EarlyBird)
	w.line(3, "limits: { maxStaff: %d, maxChairs: %d, allowPower: %t },",
		b.Limits.MaxStaff, b.Limits.MaxChairs, b.Limits.AllowPower)
	w.line(2, "},")
}

// quote produces a double-quoted string the lexer reads back unchanged.
// Non-ASCII text is kept literal so the file stays readable.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case 0x2028, 0x2029, 0x7f:
			b.WriteString(`\u` + strconv.FormatInt(int64(r)|0x10000, 16)[1:])
		default:
			if r < 0x20 {
				b.WriteString(`\u` + strconv.FormatInt(int64(r)|0x10000, 16)[1:])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
