package core

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"formcraft-backend-go/internal/models"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
	maxFields            = 100
	maxLabelLength       = 500
	maxOptions           = 100
	maxTextAnswer        = 1000
	maxTextareaAnswer    = 10000
	maxSignatureAnswer   = 512 * 1024
)

var (
	phonePattern    = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,20}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	signaturePrefix = regexp.MustCompile(`^data:image/(png|jpeg|svg\+xml);base64,`)
)

// newFieldID returns a short random field identifier.
func newFieldID() string {
	return "field_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// truncateRunes cuts s to at most n characters without splitting one.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// validateFormMeta checks the title and description of a form.
func validateFormMeta(verr *ValidationError, title, description string) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		verr.Add("title", "Title is required")
	case utf8.RuneCountInString(title) > maxTitleLength:
		verr.Addf("title", "Title must be at most %d characters", maxTitleLength)
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		verr.Addf("description", "Description must be at most %d characters", maxDescriptionLength)
	}
}

// normalizeFields assigns missing identifiers and validates a field list.
// Field ids must be unique, kinds known, choice kinds must carry options and
// numeric bounds must be ordered. The returned slice is a normalized copy.
func normalizeFields(fields []models.Field) ([]models.Field, *ValidationError) {
	verr := NewValidationError()
	if len(fields) > maxFields {
		verr.Addf("fields", "A form can have at most %d fields", maxFields)
		return nil, verr
	}

	out := make([]models.Field, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		key := fmt.Sprintf("fields[%d]", i)
		f.ID = strings.TrimSpace(f.ID)
		if f.ID == "" {
			f.ID = newFieldID()
		}
		if seen[f.ID] {
			verr.Addf(key, "Duplicate field id %q", f.ID)
		}
		seen[f.ID] = true

		f.Label = strings.TrimSpace(f.Label)
		if !f.Kind.Valid() {
			verr.Addf(key, "Unknown field type %q", f.Kind)
			out[i] = f
			continue
		}
		if utf8.RuneCountInString(f.Label) > maxLabelLength {
			verr.Addf(key, "Label must be at most %d characters", maxLabelLength)
		}

		switch f.Kind {
		case models.FieldContent:
			if strings.TrimSpace(f.Content) == "" && f.Label == "" {
				verr.Add(key, "Content blocks need some content")
			}
			f.Required = false
		case models.FieldHeading:
			if f.Label == "" {
				verr.Add(key, "Headings need a label")
			}
			f.Required = false
		case models.FieldPayment:
			if f.Amount != nil && *f.Amount < 0 {
				verr.Add(key, "Payment amount cannot be negative")
			}
			if f.Currency != "" {
				f.Currency = strings.ToUpper(f.Currency)
				if !currencyPattern.MatchString(f.Currency) {
					verr.Add(key, "Currency must be a three letter ISO code")
				}
			}
			f.Required = false
		default:
			if f.Label == "" {
				verr.Add(key, "Label is required")
			}
		}

		if f.Kind.HasOptions() || (f.Kind == models.FieldCheckbox && len(f.Options) > 0) {
			opts, msg := normalizeOptions(f.Options)
			if msg != "" {
				verr.Add(key, msg)
			}
			f.Options = opts
		}

		if f.Kind == models.FieldProduct {
			products, msg := normalizeProducts(f.Products)
			if msg != "" {
				verr.Add(key, msg)
			}
			f.Products = products
		}

		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			verr.Add(key, "Minimum cannot be greater than maximum")
		}
		switch f.Kind {
		case models.FieldRating, models.FieldSlider, models.FieldScale:
			lo, hi := f.Bounds()
			if lo >= hi {
				verr.Add(key, "Range must span at least two values")
			}
			if f.Step != nil && *f.Step <= 0 {
				verr.Add(key, "Step must be positive")
			}
		}
		out[i] = f
	}
	return out, verr
}

func normalizeOptions(options []string) ([]string, string) {
	if len(options) == 0 {
		return nil, "At least one option is required"
	}
	if len(options) > maxOptions {
		return nil, fmt.Sprintf("At most %d options are allowed", maxOptions)
	}
	out := make([]string, 0, len(options))
	seen := map[string]bool{}
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, "Options cannot be empty"
		}
		if seen[o] {
			return nil, fmt.Sprintf("Duplicate option %q", o)
		}
		seen[o] = true
		out = append(out, o)
	}
	return out, ""
}

func normalizeProducts(products []models.Product) ([]models.Product, string) {
	if len(products) == 0 {
		return nil, "At least one product is required"
	}
	out := make([]models.Product, 0, len(products))
	seen := map[string]bool{}
	for _, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" {
			p.ID = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		}
		if seen[p.ID] {
			return nil, fmt.Sprintf("Duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Name == "" {
			return nil, "Products need a name"
		}
		if p.Price < 0 {
			return nil, "Product price cannot be negative"
		}
		out = append(out, p)
	}
	return out, ""
}

// validateAnswers checks answers against the input fields of form and returns
// a normalized answer map holding only answered input fields. Keys that do not
// name an input field are rejected.
func validateAnswers(form *models.Form, answers map[string]interface{}) (map[string]interface{}, *ValidationError) {
	verr := NewValidationError()
	for key := range answers {
		if f, ok := form.FieldByID(key); !ok || !f.Kind.IsInput() {
			verr.Add(key, "Unknown field")
		}
	}

	clean := make(map[string]interface{}, len(answers))
	for _, f := range form.Fields {
		if !f.Kind.IsInput() {
			continue
		}
		raw, present := answers[f.ID]
		if !present || isEmptyAnswer(raw) {
			if f.Required {
				verr.Add(f.ID, "This field is required")
			}
			continue
		}
		value, msg := validateAnswer(f, raw)
		if msg != "" {
			verr.Add(f.ID, msg)
			continue
		}
		if f.Required && f.Kind == models.FieldCheckbox && len(f.Options) == 0 && value == false {
			verr.Add(f.ID, "This field is required")
			continue
		}
		clean[f.ID] = value
	}
	return clean, verr
}

func isEmptyAnswer(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// validateAnswer applies the kind-basic check of one field and returns the
// normalized value or a message.
func validateAnswer(f models.Field, raw interface{}) (interface{}, string) {
	switch f.Kind {
	case models.FieldText, models.FieldTextarea:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be text"
		}
		limit := maxTextAnswer
		if f.Kind == models.FieldTextarea {
			limit = maxTextareaAnswer
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > limit {
			return nil, fmt.Sprintf("Must be at most %d characters", limit)
		}
		return s, ""

	case models.FieldEmail:
		s, ok := raw.(string)
		if !ok || !isValidEmail(strings.ToLower(strings.TrimSpace(s))) {
			return nil, "Must be a valid email address"
		}
		return strings.ToLower(strings.TrimSpace(s)), ""

	case models.FieldNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, "Must be a number"
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Sprintf("Must be at least %s", formatNumber(*f.Min))
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Sprintf("Must be at most %s", formatNumber(*f.Max))
		}
		return n, ""

	case models.FieldPhone:
		s, ok := raw.(string)
		if !ok || !phonePattern.MatchString(strings.TrimSpace(s)) {
			return nil, "Must be a valid phone number"
		}
		return strings.TrimSpace(s), ""

	case models.FieldURL:
		s, ok := raw.(string)
		if !ok || !isHTTPURL(strings.TrimSpace(s)) {
			return nil, "Must be a valid URL"
		}
		return strings.TrimSpace(s), ""

	case models.FieldDate:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be a date (YYYY-MM-DD)"
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
			return nil, "Must be a date (YYYY-MM-DD)"
		}
		return strings.TrimSpace(s), ""

	case models.FieldTime:
		s, ok := raw.(string)
		if !ok {
			return nil, "Must be a time (HH:MM)"
		}
		if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
			return nil, "Must be a time (HH:MM)"
		}
		return strings.TrimSpace(s), ""

	case models.FieldSelect, models.FieldRadio:
		s, ok := raw.(string)
		if !ok || !contains(f.Options, s) {
			return nil, "Must be one of the listed options"
		}
		return s, ""

	case models.FieldMultiSelect:
		return validateChoices(f.Options, raw)

	case models.FieldCheckbox:
		if len(f.Options) > 0 {
			return validateChoices(f.Options, raw)
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, "Must be true or false"
		}
		return b, ""

	case models.FieldRating, models.FieldScale, models.FieldSlider:
		n, ok := toNumber(raw)
		if !ok {
			return nil, "Must be a number"
		}
		lo, hi := f.Bounds()
		if n < lo || n > hi {
			return nil, fmt.Sprintf("Must be between %s and %s", formatNumber(lo), formatNumber(hi))
		}
		if f.Kind != models.FieldSlider && n != math.Trunc(n) {
			return nil, "Must be a whole number"
		}
		return n, ""

	case models.FieldFile:
		s, ok := raw.(string)
		if !ok || !isHTTPURL(strings.TrimSpace(s)) {
			return nil, "Must be the URL of an uploaded file"
		}
		return strings.TrimSpace(s), ""

	case models.FieldSignature:
		s, ok := raw.(string)
		if !ok || !signaturePrefix.MatchString(s) {
			return nil, "Must be a signature image"
		}
		if len(s) > maxSignatureAnswer {
			return nil, "Signature image is too large"
		}
		return s, ""

	case models.FieldProduct:
		ids := make([]string, 0, len(f.Products))
		for _, p := range f.Products {
			ids = append(ids, p.ID)
		}
		return validateChoices(ids, raw)
	}
	return nil, "Field does not accept answers"
}

// validateChoices checks a list of distinct choices drawn from allowed.
func validateChoices(allowed []string, raw interface{}) (interface{}, string) {
	var items []string
	switch t := raw.(type) {
	case []string:
		items = t
	case []interface{}:
		for _, v := range t {
			s, ok := v.(string)
			if !ok {
				return nil, "Must be a list of options"
			}
			items = append(items, s)
		}
	default:
		return nil, "Must be a list of options"
	}
	seen := map[string]bool{}
	for _, s := range items {
		if !contains(allowed, s) {
			return nil, fmt.Sprintf("%q is not one of the listed options", s)
		}
		if seen[s] {
			return nil, fmt.Sprintf("%q was selected twice", s)
		}
		seen[s] = true
	}
	return items, ""
}

func toNumber(v interface{}) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func isHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
