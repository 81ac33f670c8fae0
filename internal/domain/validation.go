package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over the run input and then the
// semantic checks of the scenario and every position. Validation failures
// wrap ErrInvalidPosition or ErrInvalidScenario.
func (in RunInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidPosition, describeFieldErrors(fieldErrs))
		}
		return fmt.Errorf("failed to validate run input: %w", err)
	}

	if err := in.Scenario.Check(); err != nil {
		return err
	}

	return in.Portfolio.Check()
}

// Check verifies every position and symbol uniqueness
func (p Portfolio) Check() error {
	seen := make(map[string]struct{}, len(p.Positions))
	for _, pos := range p.Positions {
		if err := pos.Check(); err != nil {
			return err
		}
		key := strings.ToUpper(strings.TrimSpace(pos.Symbol))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate symbol %s", ErrInvalidPosition, pos.Symbol)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
