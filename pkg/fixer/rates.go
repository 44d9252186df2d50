package fixer

import (
	"time"

	"github.com/langowen/cryant/pkg/entities"
)

// symbolsResponse is the /symbols body.
type symbolsResponse struct {
	Success bool              `json:"success"`
	Symbols map[string]string `json:"symbols"`
}

func (r symbolsResponse) currencies() []entities.CurrencySymbol {
	return entities.FlattenMap(r.Symbols, entities.NewCurrencySymbol)
}

// latestResponse is the /latest body.
type latestResponse struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
}

func (r latestResponse) rates() []entities.ExchangeRate {
	return entities.FlattenMap(r.Rates, func(target string, rate float64) entities.ExchangeRate {
		return entities.NewRate(r.Base, target, rate)
	})
}

func (r latestResponse) snapshot() *entities.RateSnapshot {
	snapshot := &entities.RateSnapshot{
		Success: r.Success,
		Base:    r.Base,
		Date:    r.Date,
		Rates:   r.rates(),
	}
	if r.Timestamp > 0 {
		snapshot.Timestamp = time.Unix(r.Timestamp, 0).UTC()
	}

	return snapshot
}
