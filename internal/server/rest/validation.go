package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/projectboard/internal/common"
	"github.com/dmitrijs2005/projectboard/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const bodyKey = "validated_body"

// requestBody is implemented by every endpoint request type.
type requestBody[T any] interface {
	*T
	// normalize trims fields before validation.
	normalize()
	// messages maps a JSON field name to its client-facing error text.
	messages() map[string]string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonName)

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := parseISODate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("phase", func(fl validator.FieldLevel) bool {
		return models.Phase(fl.Field().String()).Valid()
	})

	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

var isoLayouts = []string{
	common.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseISODate accepts a calendar date or an ISO-8601 timestamp and keeps
// only its date part.
func parseISODate(s string) (models.Date, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return models.Date{}, errors.New("not an ISO-8601 date")
}

const maxBodyBytes = 1 << 20

// bindJSON decodes and validates the body as T and stores it for the
// handler. Every violated field is reported at once, including fields
// whose JSON value has the wrong type.
func bindJSON[T any, P requestBody[T]]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		p := P(&req)

		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
		if err != nil {
			fail(c, validationError([]FieldError{{Field: "body", Message: "Request body could not be read."}}))
			return
		}

		fields, ok := decodeFields(raw, p, p.messages())
		if !ok {
			fail(c, validationError([]FieldError{{Field: "body", Message: "Request body must be valid JSON."}}))
			return
		}

		p.normalize()

		fields = mergeFields(fields, validateStruct(p, p.messages()))
		if len(fields) > 0 {
			fail(c, validationError(fields))
			return
		}

		c.Set(bodyKey, p)
		c.Next()
	}
}

// decodeFields fills the struct p points to from a JSON object one field at
// a time, so a value of the wrong type leaves that field zero and is
// reported without hiding the rest. An empty body counts as {}. ok is false
// when raw is not a JSON object.
func decodeFields(raw []byte, p any, messages map[string]string) (fields []FieldError, ok bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, true
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}

	v := reflect.ValueOf(p).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		if name == "" {
			continue
		}
		val, found := lookupKey(obj, name)
		if !found {
			continue
		}
		if err := json.Unmarshal(val, v.Field(i).Addr().Interface()); err != nil {
			fields = append(fields, FieldError{Field: name, Message: fieldMessage(messages, name, "has the wrong type")})
		}
	}
	return fields, true
}

// lookupKey matches keys the way encoding/json does: exact first, then
// case-insensitively.
func lookupKey(obj map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// mergeFields appends the entries of more whose field is not yet listed.
func mergeFields(fields, more []FieldError) []FieldError {
	seen := make(map[string]bool, len(fields)+len(more))
	for _, f := range fields {
		seen[f.Field] = true
	}
	for _, f := range more {
		if !seen[f.Field] {
			seen[f.Field] = true
			fields = append(fields, f)
		}
	}
	return fields
}

func validateStruct(v any, messages map[string]string) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(messages, fe.Field(), fe.Error()),
		})
	}
	return fields
}

func fieldMessage(messages map[string]string, field, fallback string) string {
	if m, ok := messages[field]; ok {
		return m
	}
	return fallback
}

// body returns the value stored by bindJSON[T].
func body[T any](c *gin.Context) *T {
	v, ok := c.Get(bodyKey)
	if !ok {
		return nil
	}
	b, _ := v.(*T)
	return b
}
