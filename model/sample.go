package model

import (
	"fmt"
	"time"
)

// Quote is a polymorphic family root: a market quote, stored in the "Quote"
// collection alongside its subtypes TickQuote and BarQuote.
type Quote struct {
	Base   `bson:",inline"`
	Symbol string    `bson:"symbol"`
	AsOf   time.Time `bson:"as_of"`
}

// BuildKey assembles Quote's canonical record key from its natural fields.
func (q *Quote) BuildKey() {
	q.Key = fmt.Sprintf("%s;%d", q.Symbol, q.AsOf.Unix())
}

// TickQuote is a single trade print.
type TickQuote struct {
	Quote `bson:",inline"`
	Price float64 `bson:"price"`
	Size  int64   `bson:"size"`
}

// BarQuote is an OHLC bar over one interval.
type BarQuote struct {
	Quote    `bson:",inline"`
	Open     float64       `bson:"open"`
	High     float64       `bson:"high"`
	Low      float64       `bson:"low"`
	Close    float64       `bson:"close"`
	Interval time.Duration `bson:"interval"`
}
