package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"unicode"

	_ "time/tzdata" // zone lookups must not depend on the host

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// ValidationErrors collects every invalid setting of a record.
type ValidationErrors struct {
	errors []error
}

func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.errors = append(v.errors, err)
	}
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *ValidationErrors) Errors() []error {
	return v.errors
}

func (v *ValidationErrors) Unwrap() []error {
	return v.errors
}

func (v *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range v.errors {
		sb.WriteString(" - ")
		sb.WriteString(err.Error())
		sb.WriteRune('\n')
	}
	return sb.String()
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func settingsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("setting"); name != "" {
				return name
			}
			if name, _, _ := strings.Cut(f.Tag.Get("yaml"), ","); name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		_ = v.RegisterValidation("nocontrol", func(fl validator.FieldLevel) bool {
			return !HasControl(fl.Field().String())
		})
		_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
			_, err := language.Parse(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// HasControl reports whether s contains a control character.
func HasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// Validate checks every setting and returns *ValidationErrors listing all
// failures, or nil.
func (c SiteConfig) Validate() error {
	var verr ValidationErrors

	err := settingsValidator().Struct(c)
	var fieldErrs validator.ValidationErrors
	if err != nil && !errors.As(err, &fieldErrs) {
		return err
	}

	failed := make(map[string]bool)
	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		ferr := fmt.Errorf("%s %s", path, describe(fe))
		logConfigError(path, fe.Value(), ferr)
		verr.Add(ferr)
		failed[topLevel(path)] = true
	}
	for _, s := range c.Settings() {
		if !failed[s.Name] {
			logConfigOK(s.Name, s.Value)
		}
	}

	if verr.HasErrors() {
		return &verr
	}
	return nil
}

// fieldPath drops the struct name from the validator namespace,
// "SiteConfig.SOCIAL[0].url" becomes "SOCIAL[0].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func topLevel(path string) string {
	end := strings.IndexAny(path, ".[")
	if end < 0 {
		return path
	}
	return path[:end]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "timezone":
		return fmt.Sprintf("must be an IANA time zone name (got %q)", fe.Value())
	case "locale":
		return fmt.Sprintf("must be a language tag (got %q)", fe.Value())
	case "http_url":
		return fmt.Sprintf("must be an absolute http(s) URL (got %q)", fe.Value())
	case "url":
		return fmt.Sprintf("must be an absolute URL (got %q)", fe.Value())
	case "nocontrol":
		return "must not contain control characters"
	case "gte":
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// CheckPaths looks for the theme directory and plugin search path relative
// to baseDir. Missing paths are reported as warnings only; the site
// generator decides whether they are fatal.
func (c SiteConfig) CheckPaths(baseDir string) []string {
	var warnings []string
	check := func(key, dir string) {
		if dir == "" {
			return
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: %s does not exist", key, dir))
		case !info.IsDir():
			warnings = append(warnings, fmt.Sprintf("%s: %s is not a directory", key, dir))
		default:
			return
		}
		log.Warn().Str("config", key).Str("value", dir).Msg("optional directory not usable")
	}
	check(KeyTheme, c.Theme)
	check(KeyPluginPath, c.PluginPath)
	return warnings
}

func logConfigOK(path string, value any) {
	log.Debug().
		Str("config", path).
		Interface("value", value).
		Msg("config set")
}

func logConfigError(path string, value any, err error) {
	log.Error().
		Str("config", path).
		Interface("value", value).
		Err(err).
		Msg("invalid config value")
}
