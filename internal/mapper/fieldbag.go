package mapper

import (
	"time"

	"invodex/internal/port"
)

// fieldBag is a typed access layer over the provider's nested field tree.
// The invoice-shaped and receipt-shaped payloads are the same capability —
// a named bag of currency/string/date/array values — and differ only in the
// field-name tables (see schema) consulted against it.
type fieldBag struct {
	fields map[string]port.Field
}

// newFieldBag locates the field bag: the first element of the documents list
// when present, else the top-level fields map.
func newFieldBag(result *port.AnalyzeResult) fieldBag {
	if result == nil {
		return fieldBag{}
	}
	if len(result.Documents) > 0 {
		return fieldBag{fields: result.Documents[0].Fields}
	}
	return fieldBag{fields: result.Fields}
}

// first returns the first of names present in the bag.
func (b fieldBag) first(names ...string) (port.Field, bool) {
	for _, name := range names {
		if f, ok := b.fields[name]; ok {
			return f, true
		}
	}
	return port.Field{}, false
}

// str returns the first non-empty string value among names.
func (b fieldBag) str(names ...string) *string {
	for _, name := range names {
		if f, ok := b.fields[name]; ok && f.ValueString != "" {
			s := f.ValueString
			return &s
		}
	}
	return nil
}

// date returns the first date value among names, normalized to ISO.
func (b fieldBag) date(names ...string) *string {
	for _, name := range names {
		if f, ok := b.fields[name]; ok && f.ValueDate != "" {
			if iso := parseDate(f.ValueDate); iso != nil {
				return iso
			}
		}
	}
	return nil
}

// currency returns the first monetary value among names. A structured
// {amount, currencyCode} sub-value is preferred; a bare number value is the
// fallback and carries no code. An alias that is present but holds no amount
// does not shadow a later one, though its currency code is still reported
// when no alias yields an amount.
func (b fieldBag) currency(names ...string) (*float64, *string) {
	var code *string
	for _, name := range names {
		f, ok := b.fields[name]
		if !ok {
			continue
		}
		amount, c := currencyValue(f)
		if amount != nil {
			return amount, c
		}
		if code == nil {
			code = c
		}
	}
	return nil, code
}

// array returns the element fields of the first array-valued name.
func (b fieldBag) array(names ...string) []port.Field {
	f, ok := b.first(names...)
	if !ok {
		return nil
	}
	return f.ValueArray
}

// currencyValue extracts (amount, currencyCode) from a single field.
func currencyValue(f port.Field) (*float64, *string) {
	if f.ValueCurrency != nil {
		var code *string
		if f.ValueCurrency.CurrencyCode != "" {
			c := f.ValueCurrency.CurrencyCode
			code = &c
		}
		return f.ValueCurrency.Amount, code
	}
	return f.ValueNumber, nil
}

// objectField looks up a sub-field of a line-item object.
func objectField(obj map[string]port.Field, name string) (port.Field, bool) {
	f, ok := obj[name]
	return f, ok
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

// parseDate normalizes a provider date string to an ISO date, or nil when no
// known layout matches.
func parseDate(v string) *string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}
	return nil
}
