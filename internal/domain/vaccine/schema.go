package vaccine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["vaccineType", "manufacturer", "vaccinationDate", "vaccinationSite"],
  "properties": {
    "vaccineType":     {"type": "string", "minLength": 1, "maxLength": 128},
    "manufacturer":    {"type": "string", "minLength": 1, "maxLength": 128},
    "vaccinationDate": {"type": "string", "format": "date"},
    "vaccinationSite": {"type": "string", "minLength": 1, "maxLength": 256},
    "batchNumber":     {"type": "string", "maxLength": 64},
    "doctorName":      {"type": "string", "maxLength": 128},
    "notes":           {"type": "string", "maxLength": 2048}
  }
}`

var payloadLoader = gojsonschema.NewStringLoader(payloadSchema)

// Validate checks that the mandatory fields are present and well formed.
func (p Payload) Validate() error {
	res, err := gojsonschema.Validate(payloadLoader, gojsonschema.NewGoLoader(p))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
}
