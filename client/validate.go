package client

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// configChecker pairs the Config validator with the translator used to
// render its field messages.
type configChecker struct {
	validate   *validator.Validate
	translator ut.Translator
}

var loadConfigChecker = sync.OnceValues(func() (*configChecker, error) {
	enLocale := en.New()
	trans, ok := ut.New(enLocale, enLocale).GetTranslator("en")
	if !ok {
		return nil, fmt.Errorf("missing %q translator", "en")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("registering translations: %w", err)
	}

	// Report fields by their json names, matching how Config is documented.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &configChecker{validate: v, translator: trans}, nil
})

// validateConfig reports every Config field that breaks its tags as
// FieldErrors.
func validateConfig(cfg Config) error {
	cc, err := loadConfigChecker()
	if err != nil {
		return fmt.Errorf("loading config validator: %w", err)
	}

	err = cc.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for i, ve := range verrs {
		fields[i] = FieldError{Field: ve.Field(), Err: cc.message(ve)}
	}
	return fields
}

// message renders ve in English. Presence rules share one wording
// whichever tag raised them.
func (cc *configChecker) message(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_with":
		return "This field is required"
	default:
		return ve.Translate(cc.translator)
	}
}

// FieldError is a validation failure of a single Config field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors is returned by WithConfig when a Config is rejected.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Fields maps each failing field to its message.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Err
	}
	return m
}
