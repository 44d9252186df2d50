package apiclient

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/langowen/cryant/pkg/entities"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Decoder turns a response body into a value, returning a KindDecode or KindUpstream error on mismatch.
type Decoder func(op string, body []byte) error

// JSON decodes an object body into out after checking that every required gjson path is present.
func JSON(out any, required ...string) Decoder {
	return func(op string, body []byte) error {
		if !gjson.ValidBytes(body) {
			return entities.NewError(entities.KindDecode, op, errors.New("response is not valid json"))
		}

		doc := gjson.ParseBytes(body)
		if missing := missingField(doc, required); missing != "" {
			return entities.NewError(entities.KindDecode, op, errors.Errorf("missing field %q", missing))
		}

		return unmarshal(op, body, out)
	}
}

// JSONList decodes an array body into out. Every element must carry the required fields.
func JSONList(out any, required ...string) Decoder {
	return func(op string, body []byte) error {
		if !gjson.ValidBytes(body) {
			return entities.NewError(entities.KindDecode, op, errors.New("response is not valid json"))
		}

		doc := gjson.ParseBytes(body)
		if !doc.IsArray() {
			return entities.NewError(entities.KindDecode, op, errors.Errorf("expected array, got %s", doc.Type))
		}

		for i, item := range doc.Array() {
			if missing := missingField(item, required); missing != "" {
				return entities.NewError(entities.KindDecode, op, errors.Errorf("item %d: missing field %q", i, missing))
			}
		}

		return unmarshal(op, body, out)
	}
}

// All runs decoders in order and stops at the first failure.
func All(decoders ...Decoder) Decoder {
	return func(op string, body []byte) error {
		for _, decode := range decoders {
			if err := decode(op, body); err != nil {
				return err
			}
		}
		return nil
	}
}

// ObjectOf checks that the value at path is an object nested depth levels deep
// whose leaves all have type leaf. An empty path means the whole body.
// A null leaf is a mismatch, encoding/json would silently leave a zero value.
func ObjectOf(path string, depth int, leaf gjson.Type) Decoder {
	return func(op string, body []byte) error {
		if !gjson.ValidBytes(body) {
			return entities.NewError(entities.KindDecode, op, errors.New("response is not valid json"))
		}

		doc := gjson.ParseBytes(body)
		if path != "" {
			doc = doc.Get(path)
		}

		name := path
		if name == "" {
			name = "response"
		}
		if err := checkObject(doc, name, depth, leaf); err != nil {
			return entities.NewError(entities.KindDecode, op, err)
		}
		return nil
	}
}

func checkObject(r gjson.Result, name string, depth int, leaf gjson.Type) error {
	if depth == 0 {
		if r.Type != leaf {
			return errors.Errorf("%s: expected %s, got %s", name, leaf, r.Type)
		}
		return nil
	}

	if !r.IsObject() {
		return errors.Errorf("%s: expected object, got %s", name, r.Type)
	}

	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		err = checkObject(value, name+"."+key.String(), depth-1, leaf)
		return err == nil
	})
	return err
}

func unmarshal(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return entities.NewError(entities.KindDecode, op, errors.Wrap(err, "unmarshal response"))
	}
	return nil
}

func missingField(doc gjson.Result, required []string) string {
	for _, path := range required {
		if r := doc.Get(path); !r.Exists() || r.Type == gjson.Null {
			return path
		}
	}
	return ""
}

// upstreamMessage pulls the human readable reason out of an error body.
// apilayer uses error.info or message, CoinGecko uses status.error_message or error.
func upstreamMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, path := range []string{"error.info", "error.type", "status.error_message", "message", "error"} {
			if r := doc.Get(path); r.Type == gjson.String && r.String() != "" {
				return r.String()
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text, maxMessageLen)
	}

	return http.StatusText(status)
}

const maxMessageLen = 200

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// UpstreamMessage is upstreamMessage for callers that detect failure inside a 200 body.
func UpstreamMessage(body []byte) string {
	return upstreamMessage(body, http.StatusOK)
}
