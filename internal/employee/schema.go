package employee

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrValidation is returned when a manually entered record breaks the form constraints.
var ErrValidation = errors.New("invalid record")

// Kind describes how an attribute is typed and encoded.
type Kind int

const (
	Identifier Kind = iota
	Categorical
	Integer
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Categorical:
		return "categorical"
	case Integer:
		return "integer"
	default:
		return "unknown"
	}
}

// Unbounded marks an integer field without an upper limit.
const Unbounded = math.MaxInt32

// Field describes one form field and its domain constraints.
type Field struct {
	Name    string
	Label   string
	Help    string
	Kind    Kind
	Options []string
	Min     int
	Max     int
}

const (
	satisfactionHelp = "1-Low, 2-Medium, 3-High, 4-Very High"
	educationHelp    = "1-Below College, 2-College, 3-Bachelor, 4-Master, 5-Doctor"
)

var (
	Genders           = []string{"Male", "Female", "Other"}
	MaritalStatuses   = []string{"Single", "Married", "Divorced", "Widowed"}
	EducationFields   = []string{"Life Sciences", "Medical", "Marketing", "Technical Degree", "Other", "Human Resources"}
	Departments       = []string{"Sales", "Development", "Research & Development", "Human Resources", "Finance", "Data Science"}
	TravelFrequencies = []string{"Non-Travel", "Travel_Rarely", "Travel_Frequently"}
	YesNo             = []string{"Yes", "No"}
	JobRoles          = []string{
		"Sales Executive", "Manager", "Developer", "Sales Representative", "Human Resources",
		"Senior Developer", "Data Scientist", "Senior Manager R&D", "Laboratory Technician",
		"Manufacturing Director", "Research Scientist", "Healthcare Representative",
		"Research Director", "Manager R&D", "Finance Manager", "Technical Architect",
		"Business Analyst", "Technical Lead", "Delivery Manager",
	}
)

// Schema lists every field in Columns order.
var Schema = []Field{
	{Name: ColumnEmpNumber, Label: "Employee Number", Kind: Identifier},
	{Name: ColumnAge, Label: "Age", Kind: Integer, Min: 18, Max: 100},
	{Name: ColumnGender, Label: "Gender", Kind: Categorical, Options: Genders},
	{Name: ColumnEducationBackground, Label: "Education Background", Kind: Categorical, Options: EducationFields},
	{Name: ColumnMaritalStatus, Label: "Marital Status", Kind: Categorical, Options: MaritalStatuses},
	{Name: ColumnEmpDepartment, Label: "Department", Kind: Categorical, Options: Departments},
	{Name: ColumnEmpJobRole, Label: "Employee Job Role", Kind: Categorical, Options: JobRoles},
	{Name: ColumnBusinessTravelFrequency, Label: "Business Travel Frequency", Kind: Categorical, Options: TravelFrequencies},
	{Name: ColumnDistanceFromHome, Label: "Distance From Home (in km)", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnEmpEducationLevel, Label: "Education Level", Help: educationHelp, Kind: Integer, Min: 1, Max: 5},
	{Name: ColumnEmpEnvironmentSatisfaction, Label: "Environment Satisfaction (1 to 4)", Help: satisfactionHelp, Kind: Integer, Min: 1, Max: 4},
	{Name: ColumnEmpHourlyRate, Label: "Hourly Rate", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnEmpJobInvolvement, Label: "Job Involvement (1 to 4)", Help: satisfactionHelp, Kind: Integer, Min: 1, Max: 4},
	{Name: ColumnEmpJobLevel, Label: "Job Level (1 to 5)", Kind: Integer, Min: 1, Max: 5},
	{Name: ColumnEmpJobSatisfaction, Label: "Job Satisfaction (1 to 4)", Help: satisfactionHelp, Kind: Integer, Min: 1, Max: 4},
	{Name: ColumnNumCompaniesWorked, Label: "Number of Companies Worked", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnOverTime, Label: "Over Time", Kind: Categorical, Options: YesNo},
	{Name: ColumnEmpLastSalaryHikePercent, Label: "Salary Hike Percent", Kind: Integer, Min: 0, Max: 100},
	{Name: ColumnEmpRelationshipSatisfaction, Label: "Relationship Satisfaction (1 to 4)", Help: satisfactionHelp, Kind: Integer, Min: 1, Max: 4},
	{Name: ColumnTotalWorkExperienceInYears, Label: "Total Work Experience (in years)", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnTrainingTimesLastYear, Label: "Training Times Last Year", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnEmpWorkLifeBalance, Label: "Work-Life Balance (1 to 4)", Help: satisfactionHelp, Kind: Integer, Min: 1, Max: 4},
	{Name: ColumnExperienceYearsAtThisCompany, Label: "Years at This Company", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnExperienceYearsInCurrentRole, Label: "Years in Current Role", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnYearsSinceLastPromotion, Label: "Years Since Last Promotion", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnYearsWithCurrManager, Label: "Years with Current Manager", Kind: Integer, Min: 0, Max: Unbounded},
	{Name: ColumnAttrition, Label: "Attrition", Kind: Categorical, Options: YesNo},
}

// FieldByName looks a field up by its column name.
func FieldByName(name string) (Field, bool) {
	for _, f := range Schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CategoricalFields returns the categorical part of the schema.
func CategoricalFields() []Field {
	fields := make([]Field, 0)
	for _, f := range Schema {
		if f.Kind == Categorical {
			fields = append(fields, f)
		}
	}
	return fields
}

// Bounds renders the accepted range of an integer field.
func (f Field) Bounds() string {
	if f.Max == Unbounded {
		return fmt.Sprintf(">= %d", f.Min)
	}
	return fmt.Sprintf("%d..%d", f.Min, f.Max)
}

// Parse checks a raw text value against the field and returns it trimmed.
// It is used as the per-keystroke validator of interactive prompts.
func (f Field) Parse(raw string) (string, error) {
	value := strings.TrimSpace(raw)

	switch f.Kind {
	case Identifier:
		return value, nil
	case Categorical:
		if !slices.Contains(f.Options, value) {
			return "", fmt.Errorf("%s must be one of: %s", f.Name, strings.Join(f.Options, ", "))
		}
		return value, nil
	case Integer:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%s must be a whole number", f.Name)
		}
		if err := f.checkRange(n); err != nil {
			return "", err
		}
		return value, nil
	default:
		return "", fmt.Errorf("%s has unsupported kind %s", f.Name, f.Kind)
	}
}

func (f Field) checkRange(n int) error {
	if n < f.Min || n > f.Max {
		return fmt.Errorf("%s must be %s, got %d", f.Name, f.Bounds(), n)
	}
	return nil
}

// Validate enforces the manual entry constraints on a whole record.
// Out of range values are rejected, never clamped.
func Validate(r Record) error {
	categories := r.Categories()
	numbers := r.Numbers()

	var problems []string
	for _, f := range Schema {
		switch f.Kind {
		case Categorical:
			if !slices.Contains(f.Options, categories[f.Name]) {
				problems = append(problems, fmt.Sprintf("%s %q is not one of: %s", f.Name, categories[f.Name], strings.Join(f.Options, ", ")))
			}
		case Integer:
			if err := f.checkRange(numbers[f.Name]); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
