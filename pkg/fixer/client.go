// Package fixer is a client for the Fixer foreign exchange API served by apilayer.
package fixer

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
	BaseURL = "https://api.apilayer.com/fixer"

	keyHeader = "apikey"
)

type Client struct {
	api *apiclient.Client
}

func New(apiKey string, opts ...apiclient.Option) *Client {
	header := http.Header{}
	header.Set(keyHeader, apiKey)

	return &Client{
		api: apiclient.New("fixer", BaseURL, header, opts...),
	}
}

// ListSupportedCurrencies returns the currencies Fixer quotes. Order is not defined.
func (c *Client) ListSupportedCurrencies(ctx context.Context) ([]entities.CurrencySymbol, error) {
	const op = "fixer.ListSupportedCurrencies"

	var resp symbolsResponse
	if err := c.api.Fetch(ctx, op, "/symbols", nil, decodeChecked(&resp, apiclient.ObjectOf("symbols", 1, gjson.String), "symbols")); err != nil {
		return nil, err
	}

	return resp.currencies(), nil
}

// GetExchangeRate returns the latest rates of base against targets,
// or against every known currency when targets is empty.
func (c *Client) GetExchangeRate(ctx context.Context, base string, targets []string) ([]entities.ExchangeRate, error) {
	snapshot, err := c.latest(ctx, "fixer.GetExchangeRate", base, targets)
	if err != nil {
		return nil, err
	}

	return snapshot.Rates, nil
}

// LatestRates is GetExchangeRate keeping the date and timestamp the service reported.
func (c *Client) LatestRates(ctx context.Context, base string, targets []string) (*entities.RateSnapshot, error) {
	return c.latest(ctx, "fixer.LatestRates", base, targets)
}

func (c *Client) latest(ctx context.Context, op, base string, targets []string) (*entities.RateSnapshot, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, entities.NewError(entities.KindInvalidArgument, op, errors.New("base currency is required"))
	}

	query := url.Values{}
	query.Set("base", base)
	if symbols := apiclient.Normalize(targets); len(symbols) > 0 {
		query.Set("symbols", strings.Join(symbols, ","))
	}

	var resp latestResponse
	if err := c.api.Fetch(ctx, op, "/latest", query, decodeChecked(&resp, apiclient.ObjectOf("rates", 1, gjson.Number), "timestamp", "date", "base", "rates")); err != nil {
		return nil, err
	}

	return resp.snapshot(), nil
}

// decodeChecked rejects bodies whose success flag is false, then decodes the required
// fields and checks every map leaf. Fixer reports most failures with a 200 status.
func decodeChecked(out any, shape apiclient.Decoder, required ...string) apiclient.Decoder {
	return func(op string, body []byte) error {
		var flag successFlag
		if err := apiclient.JSON(&flag, "success")(op, body); err != nil {
			return err
		}

		if !flag.Success {
			return entities.NewError(entities.KindUpstream, op, errors.New(apiclient.UpstreamMessage(body)))
		}

		return apiclient.All(apiclient.JSON(out, required...), shape)(op, body)
	}
}

type successFlag struct {
	Success bool `json:"success"`
}
