package form

import (
	"fmt"

	"github.com/manifoldco/promptui"

	"github.com/spigell/perf-predictor/internal/employee"
)

// Terminal asks for field values on the terminal.
type Terminal struct{}

func (Terminal) Ask(field employee.Field) (string, error) {
	label := field.Label
	if label == "" {
		label = field.Name
	}

	switch field.Kind {
	case employee.Categorical:
		selector := promptui.Select{
			Label: label,
			Items: field.Options,
			Size:  len(field.Options),
		}
		_, value, err := selector.Run()
		return value, err
	case employee.Integer:
		if field.Help != "" {
			label = fmt.Sprintf("%s (%s)", label, field.Help)
		} else {
			label = fmt.Sprintf("%s (%s)", label, field.Bounds())
		}
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			_, err := field.Parse(input)
			return err
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return field.Parse(value)
}
