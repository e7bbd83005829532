package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern   = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	stepNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("step_name", func(fl validator.FieldLevel) bool {
			return stepNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the chain
// definition. Graph-level validation (cycles, ordering) is repeated by
// the engine at execute time; the checks here exist to reject obviously
// broken documents with file-oriented error messages.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return docsmitherrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	stepIndex := make(map[string]int, len(cfg.Steps))
	for i, step := range cfg.Steps {
		if _, exists := stepIndex[step.Name]; exists {
			return docsmitherrors.NewValidationError(fieldForStep(i, "name"), fmt.Sprintf("duplicate step name %q", step.Name), nil)
		}
		stepIndex[step.Name] = i
	}

	for i, step := range cfg.Steps {
		for _, dep := range step.DependsOn {
			if dep == step.Name {
				return docsmitherrors.NewValidationError(fieldForStep(i, "depends_on"), fmt.Sprintf("step %q depends on itself", step.Name), nil)
			}
			if _, ok := stepIndex[dep]; !ok {
				return docsmitherrors.NewValidationError(fieldForStep(i, "depends_on"), fmt.Sprintf("references unknown step %q", dep), nil)
			}
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return docsmitherrors.NewValidationError(field, msg, err)
	}

	return docsmitherrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForStep(index int, field string) string {
	return fmt.Sprintf("steps[%d].%s", index, field)
}
