package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test struct with validation tags
type TestRequest struct {
	Name        string    `json:"name" validate:"required"`
	SKU         string    `json:"sku" validate:"required"`
	ReleaseDate time.Time `json:"release_date" validate:"required"`
	Stock       int       `json:"stock_quantity" validate:"gte=0,lte=100000"`
}

func decodeTestRequest(body map[string]interface{}) (TestRequest, error) {
	reqBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var testReq TestRequest
	err := DecodeAndValidate(req, &testReq)
	return testReq, err
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeSKU bool, includeReleaseDate bool) bool {
			reqMap := map[string]interface{}{"stock_quantity": 3}

			if includeName {
				reqMap["name"] = "Kindle Paperwhite"
			}
			if includeSKU {
				reqMap["sku"] = "KPW-2024"
			}
			if includeReleaseDate {
				reqMap["release_date"] = "2024-10-16T00:00:00Z"
			}

			allFieldsPresent := includeName && includeSKU && includeReleaseDate

			_, err := decodeTestRequest(reqMap)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_StockRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock outside valid range is rejected", prop.ForAll(
		func(stock int) bool {
			_, err := decodeTestRequest(map[string]interface{}{
				"name":           "Kindle Paperwhite",
				"sku":            "KPW-2024",
				"release_date":   "2024-10-16T00:00:00Z",
				"stock_quantity": stock,
			})

			if stock >= 0 && stock <= 100000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-1000, 101000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors_UsesJSONFieldNames(t *testing.T) {
	_, err := decodeTestRequest(map[string]interface{}{
		"name":           "Kindle Paperwhite",
		"stock_quantity": -1,
	})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field] = e.Message
	}

	assert.Equal(t, map[string]string{
		"sku":            "This field is required",
		"release_date":   "This field is required",
		"stock_quantity": "Value must be greater than or equal to 0",
	}, fields)
}

func TestFormatValidationErrors_IgnoresDecodeErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte(`{"name":`)))

	var testReq TestRequest
	err := DecodeAndValidate(req, &testReq)

	require.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err))
}
