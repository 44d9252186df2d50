package coingecko

import "github.com/langowen/cryant/pkg/entities"

// priceResponse is the /simple/price body: asset id -> currency -> price.
type priceResponse map[string]map[string]float64

func (p priceResponse) records() []entities.PriceRecord {
	return entities.Flatten(map[string]map[string]float64(p), entities.NewPriceRecord)
}
