package entities

// Asset is a tradable coin as listed by the price service.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// PriceRecord is the price of one asset in one currency.
type PriceRecord struct {
	Asset    string  `json:"asset"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

func NewPriceRecord(asset, currency string, price float64) PriceRecord {
	return PriceRecord{
		Asset:    asset,
		Currency: currency,
		Price:    price,
	}
}
