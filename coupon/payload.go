package coupon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidPayload = errors.New("invalid QR payload")

// Payload is what a scanning station reads from a coupon QR code.
// The regular form carries ID and Code. The legacy form carries Code with Name and Team and
// has to be resolved by code.
type Payload struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"couponCode"`
	Name string `json:"name,omitempty"`
	Team string `json:"team,omitempty"`
}

// HasID reports whether the payload can be redeemed directly by registration id.
func (p Payload) HasID() bool { return p.ID != "" }

func (p Payload) validate() error {
	if p.Code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidPayload)
	}
	if !IsValidCode(p.Code) {
		return fmt.Errorf("%w: malformed code", ErrInvalidPayload)
	}
	if p.ID == "" && p.Team == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPayload)
	}
	return nil
}

type claims struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// Codec encodes and decodes QR payloads. With a secret it emits HS256-signed tokens
// and rejects tokens it cannot verify. Plain JSON payloads are always accepted.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	c := &Codec{}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

func (c *Codec) Signed() bool { return len(c.secret) > 0 }

// Encode renders the payload stored in the QR code of a registration.
func (c *Codec) Encode(id, code string) (string, error) {
	if !c.Signed() {
		b, err := json.Marshal(Payload{ID: id, Code: code})
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:   id,
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString(c.secret)
}

// Decode parses a scanned token. Malformed or incomplete tokens return ErrInvalidPayload.
func (c *Codec) Decode(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	if strings.HasPrefix(raw, "{") {
		return parseJSON(raw)
	}
	if strings.Count(raw, ".") == 2 {
		return c.parseToken(raw)
	}
	return Payload{}, fmt.Errorf("%w: unrecognised format", ErrInvalidPayload)
}

func (c *Codec) parseToken(raw string) (Payload, error) {
	if !c.Signed() {
		return Payload{}, fmt.Errorf("%w: signed tokens are not enabled", ErrInvalidPayload)
	}

	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	p := Payload{ID: cl.ID, Code: cl.Code}
	if err := p.validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

func parseJSON(raw string) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidPayload)
	}

	var p Payload
	var ok bool
	if p.ID, ok = stringField(fields, "id"); !ok {
		return Payload{}, fmt.Errorf("%w: id must be a string", ErrInvalidPayload)
	}
	// couponCode is what the service emits, code is what older coupons carry
	if p.Code, ok = stringField(fields, "couponCode"); !ok {
		return Payload{}, fmt.Errorf("%w: couponCode must be a string or number", ErrInvalidPayload)
	}
	if p.Code == "" {
		if p.Code, ok = stringField(fields, "code"); !ok {
			return Payload{}, fmt.Errorf("%w: code must be a string or number", ErrInvalidPayload)
		}
	}
	p.Name, _ = stringField(fields, "name")
	p.Team, _ = stringField(fields, "team")

	if err := p.validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// stringField returns the trimmed value of key. Absent keys yield "" and true.
func stringField(fields map[string]interface{}, key string) (string, bool) {
	v, present := fields[key]
	if !present || v == nil {
		return "", true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case json.Number:
		return val.String(), true
	default:
		return "", false
	}
}
