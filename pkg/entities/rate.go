package entities

import "time"

type CurrencySymbol struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type ExchangeRate struct {
	Base   string  `json:"base"`
	Target string  `json:"target"`
	Rate   float64 `json:"rate"`
}

// RateSnapshot is a rates response together with the metadata the service sends along.
type RateSnapshot struct {
	Success   bool           `json:"success"`
	Base      string         `json:"base"`
	Date      string         `json:"date"`
	Timestamp time.Time      `json:"timestamp"`
	Rates     []ExchangeRate `json:"rates"`
}

func NewCurrencySymbol(symbol, name string) CurrencySymbol {
	return CurrencySymbol{
		Symbol: symbol,
		Name:   name,
	}
}

func NewRate(base, target string, rate float64) ExchangeRate {
	return ExchangeRate{
		Base:   base,
		Target: target,
		Rate:   rate,
	}
}
