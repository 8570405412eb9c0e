// Package pricing implements the per-class rate table (C2): a fixed lookup keyed by
// vehicle class, with a documented fallback for unknown classes.
package pricing

import "log"

// Rate holds the per-km rates for one vehicle class.
type Rate struct {
	ActivePay      float64 // driver pay per active km
	DeadPay        float64 // driver pay per dead km
	CustomerPrice  float64 // customer price per km
	DeadRatio      float64 // assumed dead-km ratio used when pricing a single booking's fare
}

// DefaultRate is used for any class missing from the table.
var DefaultRate = Rate{ActivePay: 16, DeadPay: 10, CustomerPrice: 20, DeadRatio: 0.40}

// Table is a read-only lookup confined to the tick driver's collaborators.
type Table struct {
	rates   map[int]Rate
	warned  map[int]bool
}

// NewTable builds a pricing table from per-class rates (class -> Rate).
func NewTable(rates map[int]Rate) *Table {
	cp := make(map[int]Rate, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return &Table{rates: cp, warned: make(map[int]bool)}
}

// Lookup returns the rate for class, falling back to DefaultRate for an unknown
// class. The fallback is logged exactly once per class for the lifetime of the table.
func (t *Table) Lookup(class int) Rate {
	if r, ok := t.rates[class]; ok {
		return r
	}
	if !t.warned[class] {
		log.Printf("pricing: unknown vehicle class %d, using default rate", class)
		t.warned[class] = true
	}
	return DefaultRate
}

// DefaultTable returns the nine-class rate table used when no custom rates are
// configured, scaled by class the way a fleet's nicer vehicles command a higher rate.
func DefaultTable() *Table {
	rates := make(map[int]Rate, 9)
	for class := 1; class <= 9; class++ {
		step := float64(class-1) * 0.5
		rates[class] = Rate{
			ActivePay:     14 + step,
			DeadPay:       8 + step*0.5,
			CustomerPrice: 18 + step,
			DeadRatio:     0.35,
		}
	}
	return NewTable(rates)
}
