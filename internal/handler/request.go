package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
)

// payload is a decoded JSON object whose fields are read one by one, so
// that absent, null and present values can be told apart. Read errors
// accumulate in verr.
type payload struct {
	raw  map[string]json.RawMessage
	verr *service.ValidationError
}

func decodePayload(c *gin.Context) (*payload, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, service.NewFieldError(nonFieldErrorsName, msgMalformedJSON)
	}

	p := &payload{raw: map[string]json.RawMessage{}, verr: &service.ValidationError{}}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return p, nil
	}
	if !json.Valid(body) {
		return nil, service.NewFieldError(nonFieldErrorsName, msgMalformedJSON)
	}
	if err := json.Unmarshal(body, &p.raw); err != nil || p.raw == nil {
		return nil, service.NewFieldError(nonFieldErrorsName, msgInvalidObject)
	}
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// lookup returns the raw value of name. Null is recorded as an error.
func (p *payload) lookup(name string) (json.RawMessage, bool) {
	raw, ok := p.raw[name]
	if !ok {
		return nil, false
	}
	if isNull(raw) {
		p.verr.Add(name, service.MsgNull)
		return nil, false
	}
	return raw, true
}

func decodeField[T any](p *payload, name, invalid string) *T {
	raw, ok := p.lookup(name)
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		p.verr.Add(name, invalid)
		return nil
	}
	return &v
}

func (p *payload) Text(name string) *string {
	return decodeField[string](p, name, msgInvalidString)
}

func (p *payload) Int(name string) *int {
	return decodeField[int](p, name, msgInvalidInteger)
}

// Decimal accepts a JSON number or a numeric string.
func (p *payload) Decimal(name string) *decimal.Decimal {
	raw, ok := p.lookup(name)
	if !ok {
		return nil
	}
	text := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		p.verr.Add(name, msgInvalidNumber)
		return nil
	}
	return &d
}

// Names reads a list of {"name": ...} objects. A present list, even an
// empty one, yields a non-nil result.
func (p *payload) Names(name string) *[]string {
	raw, ok := p.lookup(name)
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		p.verr.Add(name, msgInvalidList)
		return nil
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", name, i)

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			p.verr.Add(path, msgInvalidObject)
			continue
		}
		nested := &payload{raw: obj, verr: &service.ValidationError{}}
		value := nested.Text("name")
		if value == nil {
			if _, present := obj["name"]; !present {
				nested.verr.Add("name", service.MsgRequired)
			}
		}
		for field, msgs := range nested.verr.Fields {
			for _, msg := range msgs {
				p.verr.Add(path+"."+field, msg)
			}
		}
		if value != nil {
			names = append(names, *value)
		}
	}
	return &names
}

// Err returns the collected field errors, if any.
func (p *payload) Err() error {
	return p.verr.OrNil()
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseIDList reads a comma separated list of IDs such as "1,2,3". An
// empty parameter means no filter.
func parseIDList(c *gin.Context, verr *service.ValidationError, name string) []uint {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return nil
	}

	var ids []uint
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			verr.Add(name, msgInvalidInteger)
			return nil
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// parseFlag reads a 0/1 query parameter, defaulting to false.
func parseFlag(c *gin.Context, verr *service.ValidationError, name string) bool {
	switch value := c.Query(name); value {
	case "", "0":
		return false
	case "1":
		return true
	default:
		verr.Add(name, fmt.Sprintf("%q is not a valid choice.", value))
		return false
	}
}

func validEmail(email string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return strings.Contains(email, "@")
	}
	return v.Var(email, "required,email") == nil
}
