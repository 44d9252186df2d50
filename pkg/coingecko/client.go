// Package coingecko is a client for the CoinGecko price API.
package coingecko

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/langowen/cryant/pkg/apiclient"
	"github.com/langowen/cryant/pkg/entities"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	BaseURL    = "https://api.coingecko.com/api/v3"
	ProBaseURL = "https://pro-api.coingecko.com/api/v3"

	demoKeyHeader = "x-cg-demo-api-key"
	proKeyHeader  = "x-cg-pro-api-key"
)

type Client struct {
	api *apiclient.Client
}

// New returns a client for the public (demo key) API.
func New(apiKey string, opts ...apiclient.Option) *Client {
	return newClient(BaseURL, demoKeyHeader, apiKey, opts)
}

// NewPro returns a client for the paid API, which uses another host and header.
func NewPro(apiKey string, opts ...apiclient.Option) *Client {
	return newClient(ProBaseURL, proKeyHeader, apiKey, opts)
}

func newClient(baseURL, keyHeader, apiKey string, opts []apiclient.Option) *Client {
	header := http.Header{}
	header.Set(keyHeader, apiKey)

	return &Client{
		api: apiclient.New("coingecko", baseURL, header, opts...),
	}
}

// ListSupportedAssets returns every coin the service knows about.
func (c *Client) ListSupportedAssets(ctx context.Context) ([]entities.Asset, error) {
	const op = "coingecko.ListSupportedAssets"

	var assets []entities.Asset
	if err := c.api.Fetch(ctx, op, "/coins/list", nil, apiclient.JSONList(&assets, "id", "symbol", "name")); err != nil {
		return nil, err
	}

	return assets, nil
}

// GetPrice returns one record per (asset, currency) pair the service priced.
// Order is not defined.
func (c *Client) GetPrice(ctx context.Context, assetIDs, currencyIDs []string) ([]entities.PriceRecord, error) {
	const op = "coingecko.GetPrice"

	ids := apiclient.Normalize(assetIDs)
	if len(ids) == 0 {
		return nil, entities.NewError(entities.KindInvalidArgument, op, errors.New("at least one coin id is required"))
	}

	currencies := apiclient.Normalize(currencyIDs)
	if len(currencies) == 0 {
		return nil, entities.NewError(entities.KindInvalidArgument, op, errors.New("at least one fiat currency id is required"))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.Join(currencies, ","))

	var prices priceResponse
	decode := apiclient.All(
		apiclient.ObjectOf("", 2, gjson.Number),
		apiclient.JSON(&prices),
	)
	if err := c.api.Fetch(ctx, op, "/simple/price", query, decode); err != nil {
		return nil, err
	}

	return prices.records(), nil
}
