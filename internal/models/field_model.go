package models

// FieldKind is the variant tag of a form field.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldTextarea    FieldKind = "textarea"
	FieldEmail       FieldKind = "email"
	FieldNumber      FieldKind = "number"
	FieldPhone       FieldKind = "phone"
	FieldURL         FieldKind = "url"
	FieldDate        FieldKind = "date"
	FieldTime        FieldKind = "time"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	FieldRadio       FieldKind = "radio"
	FieldCheckbox    FieldKind = "checkbox"
	FieldRating      FieldKind = "rating"
	FieldSlider      FieldKind = "slider"
	FieldScale       FieldKind = "scale"
	FieldFile        FieldKind = "file"
	FieldSignature   FieldKind = "signature"
	FieldPayment     FieldKind = "payment"
	FieldProduct     FieldKind = "product"
	FieldContent     FieldKind = "content"
	FieldHeading     FieldKind = "heading"
)

var allFieldKinds = []FieldKind{
	FieldText, FieldTextarea, FieldEmail, FieldNumber, FieldPhone, FieldURL, FieldDate, FieldTime,
	FieldSelect, FieldMultiSelect, FieldRadio, FieldCheckbox, FieldRating, FieldSlider, FieldScale,
	FieldFile, FieldSignature, FieldPayment, FieldProduct, FieldContent, FieldHeading,
}

// AllFieldKinds returns every supported kind in display order.
func AllFieldKinds() []FieldKind {
	out := make([]FieldKind, len(allFieldKinds))
	copy(out, allFieldKinds)
	return out
}

// Valid reports whether k is one of the supported kinds.
func (k FieldKind) Valid() bool {
	for _, known := range allFieldKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsInput reports whether the kind collects an answer. Content, headings and
// the payment placeholder are display-only.
func (k FieldKind) IsInput() bool {
	switch k {
	case FieldContent, FieldHeading, FieldPayment:
		return false
	default:
		return k.Valid()
	}
}

// HasOptions reports whether the kind requires a list of options.
func (k FieldKind) HasOptions() bool {
	switch k {
	case FieldSelect, FieldMultiSelect, FieldRadio:
		return true
	default:
		return false
	}
}

// Default numeric bounds for range kinds when the author sets none.
const (
	DefaultRatingMax = 5
	DefaultScaleMin  = 1
	DefaultScaleMax  = 10
	DefaultSliderMin = 0
	DefaultSliderMax = 100
)

// Field is one input or content unit of a form.
type Field struct {
	ID          string    `json:"id" firestore:"id"`
	Kind        FieldKind `json:"type" firestore:"type"`
	Label       string    `json:"label" firestore:"label"`
	Placeholder string    `json:"placeholder,omitempty" firestore:"placeholder,omitempty"`
	HelpText    string    `json:"helpText,omitempty" firestore:"helpText,omitempty"`
	Required    bool      `json:"required" firestore:"required"`
	Options     []string  `json:"options,omitempty" firestore:"options,omitempty"`
	Min         *float64  `json:"min,omitempty" firestore:"min,omitempty"`
	Max         *float64  `json:"max,omitempty" firestore:"max,omitempty"`
	Step        *float64  `json:"step,omitempty" firestore:"step,omitempty"`
	Content     string    `json:"content,omitempty" firestore:"content,omitempty"` // Rich text for content/heading kinds
	Currency    string    `json:"currency,omitempty" firestore:"currency,omitempty"`
	Amount      *float64  `json:"amount,omitempty" firestore:"amount,omitempty"`
	Products    []Product `json:"products,omitempty" firestore:"products,omitempty"`
}

// Product is an item offered by a product field.
type Product struct {
	ID       string  `json:"id" firestore:"id"`
	Name     string  `json:"name" firestore:"name"`
	Price    float64 `json:"price" firestore:"price"`
	ImageURL string  `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
}

// Bounds returns the effective numeric range of a range-like field.
func (f Field) Bounds() (min, max float64) {
	switch f.Kind {
	case FieldRating:
		min, max = 1, DefaultRatingMax
	case FieldScale:
		min, max = DefaultScaleMin, DefaultScaleMax
	case FieldSlider:
		min, max = DefaultSliderMin, DefaultSliderMax
	}
	if f.Min != nil {
		min = *f.Min
	}
	if f.Max != nil {
		max = *f.Max
	}
	return min, max
}
