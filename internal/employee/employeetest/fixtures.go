// Package employeetest provides record fixtures shared by tests.
package employeetest

import (
	"strings"

	"github.com/spigell/perf-predictor/internal/employee"
)

// Record returns a record that satisfies every form constraint.
func Record() employee.Record {
	return employee.Record{
		EmpNumber:                    "E1001000",
		Age:                          30,
		Gender:                       "Male",
		EducationBackground:          "Marketing",
		MaritalStatus:                "Single",
		EmpDepartment:                "Sales",
		EmpJobRole:                   "Sales Executive",
		BusinessTravelFrequency:      "Travel_Rarely",
		DistanceFromHome:             10,
		EmpEducationLevel:            3,
		EmpEnvironmentSatisfaction:   4,
		EmpHourlyRate:                55,
		EmpJobInvolvement:            3,
		EmpJobLevel:                  2,
		EmpJobSatisfaction:           4,
		NumCompaniesWorked:           1,
		OverTime:                     "No",
		EmpLastSalaryHikePercent:     12,
		EmpRelationshipSatisfaction:  4,
		TotalWorkExperienceInYears:   10,
		TrainingTimesLastYear:        2,
		EmpWorkLifeBalance:           2,
		ExperienceYearsAtThisCompany: 10,
		ExperienceYearsInCurrentRole: 7,
		YearsSinceLastPromotion:      0,
		YearsWithCurrManager:         8,
		Attrition:                    "No",
	}
}

// CSV renders records as an upload with the standard header. Extra header
// columns are appended after the attributes and filled from extra.
func CSV(records []employee.Record, extra map[string][]string) string {
	header := append([]string{}, employee.Columns...)
	extraNames := make([]string, 0, len(extra))
	for name := range extra {
		extraNames = append(extraNames, name)
	}
	header = append(header, extraNames...)

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")
	for i, r := range records {
		cells := r.Values()
		for _, name := range extraNames {
			cells = append(cells, extra[name][i])
		}
		for j, cell := range cells {
			if strings.ContainsAny(cell, ",\"") {
				cells[j] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
			}
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// Without drops a column from a CSV produced by CSV.
func Without(csv, column string) string {
	lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
	header := strings.Split(lines[0], ",")
	idx := -1
	for i, name := range header {
		if name == column {
			idx = i
		}
	}
	if idx < 0 {
		return csv
	}

	var b strings.Builder
	for _, line := range lines {
		cells := strings.Split(line, ",")
		cells = append(cells[:idx], cells[idx+1:]...)
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")
	}
	return b.String()
}
