package employee

import (
	"strconv"
)

// Column names, in display order.
const (
	ColumnEmpNumber                    = "EmpNumber"
	ColumnAge                          = "Age"
	ColumnGender                       = "Gender"
	ColumnEducationBackground          = "EducationBackground"
	ColumnMaritalStatus                = "MaritalStatus"
	ColumnEmpDepartment                = "EmpDepartment"
	ColumnEmpJobRole                   = "EmpJobRole"
	ColumnBusinessTravelFrequency      = "BusinessTravelFrequency"
	ColumnDistanceFromHome             = "DistanceFromHome"
	ColumnEmpEducationLevel            = "EmpEducationLevel"
	ColumnEmpEnvironmentSatisfaction   = "EmpEnvironmentSatisfaction"
	ColumnEmpHourlyRate                = "EmpHourlyRate"
	ColumnEmpJobInvolvement            = "EmpJobInvolvement"
	ColumnEmpJobLevel                  = "EmpJobLevel"
	ColumnEmpJobSatisfaction           = "EmpJobSatisfaction"
	ColumnNumCompaniesWorked           = "NumCompaniesWorked"
	ColumnOverTime                     = "OverTime"
	ColumnEmpLastSalaryHikePercent     = "EmpLastSalaryHikePercent"
	ColumnEmpRelationshipSatisfaction  = "EmpRelationshipSatisfaction"
	ColumnTotalWorkExperienceInYears   = "TotalWorkExperienceInYears"
	ColumnTrainingTimesLastYear        = "TrainingTimesLastYear"
	ColumnEmpWorkLifeBalance           = "EmpWorkLifeBalance"
	ColumnExperienceYearsAtThisCompany = "ExperienceYearsAtThisCompany"
	ColumnExperienceYearsInCurrentRole = "ExperienceYearsInCurrentRole"
	ColumnYearsSinceLastPromotion      = "YearsSinceLastPromotion"
	ColumnYearsWithCurrManager         = "YearsWithCurrManager"
	ColumnAttrition                    = "Attrition"

	// RatingColumn holds the historical rating in uploads that carry one.
	// It is never a model feature.
	RatingColumn = "PerformanceRating"
)

// Columns lists every record attribute in the fixed display order.
var Columns = []string{
	ColumnEmpNumber, ColumnAge, ColumnGender, ColumnEducationBackground, ColumnMaritalStatus,
	ColumnEmpDepartment, ColumnEmpJobRole, ColumnBusinessTravelFrequency, ColumnDistanceFromHome,
	ColumnEmpEducationLevel, ColumnEmpEnvironmentSatisfaction, ColumnEmpHourlyRate,
	ColumnEmpJobInvolvement, ColumnEmpJobLevel, ColumnEmpJobSatisfaction, ColumnNumCompaniesWorked,
	ColumnOverTime, ColumnEmpLastSalaryHikePercent, ColumnEmpRelationshipSatisfaction,
	ColumnTotalWorkExperienceInYears, ColumnTrainingTimesLastYear, ColumnEmpWorkLifeBalance,
	ColumnExperienceYearsAtThisCompany, ColumnExperienceYearsInCurrentRole, ColumnYearsSinceLastPromotion,
	ColumnYearsWithCurrManager, ColumnAttrition,
}

// Record is one employee's raw attribute set.
type Record struct {
	EmpNumber                    string `mapstructure:"EmpNumber" json:"EmpNumber" yaml:"EmpNumber"`
	Age                          int    `mapstructure:"Age" json:"Age" yaml:"Age"`
	Gender                       string `mapstructure:"Gender" json:"Gender" yaml:"Gender"`
	EducationBackground          string `mapstructure:"EducationBackground" json:"EducationBackground" yaml:"EducationBackground"`
	MaritalStatus                string `mapstructure:"MaritalStatus" json:"MaritalStatus" yaml:"MaritalStatus"`
	EmpDepartment                string `mapstructure:"EmpDepartment" json:"EmpDepartment" yaml:"EmpDepartment"`
	EmpJobRole                   string `mapstructure:"EmpJobRole" json:"EmpJobRole" yaml:"EmpJobRole"`
	BusinessTravelFrequency      string `mapstructure:"BusinessTravelFrequency" json:"BusinessTravelFrequency" yaml:"BusinessTravelFrequency"`
	DistanceFromHome             int    `mapstructure:"DistanceFromHome" json:"DistanceFromHome" yaml:"DistanceFromHome"`
	EmpEducationLevel            int    `mapstructure:"EmpEducationLevel" json:"EmpEducationLevel" yaml:"EmpEducationLevel"`
	EmpEnvironmentSatisfaction   int    `mapstructure:"EmpEnvironmentSatisfaction" json:"EmpEnvironmentSatisfaction" yaml:"EmpEnvironmentSatisfaction"`
	EmpHourlyRate                int    `mapstructure:"EmpHourlyRate" json:"EmpHourlyRate" yaml:"EmpHourlyRate"`
	EmpJobInvolvement            int    `mapstructure:"EmpJobInvolvement" json:"EmpJobInvolvement" yaml:"EmpJobInvolvement"`
	EmpJobLevel                  int    `mapstructure:"EmpJobLevel" json:"EmpJobLevel" yaml:"EmpJobLevel"`
	EmpJobSatisfaction           int    `mapstructure:"EmpJobSatisfaction" json:"EmpJobSatisfaction" yaml:"EmpJobSatisfaction"`
	NumCompaniesWorked           int    `mapstructure:"NumCompaniesWorked" json:"NumCompaniesWorked" yaml:"NumCompaniesWorked"`
	OverTime                     string `mapstructure:"OverTime" json:"OverTime" yaml:"OverTime"`
	EmpLastSalaryHikePercent     int    `mapstructure:"EmpLastSalaryHikePercent" json:"EmpLastSalaryHikePercent" yaml:"EmpLastSalaryHikePercent"`
	EmpRelationshipSatisfaction  int    `mapstructure:"EmpRelationshipSatisfaction" json:"EmpRelationshipSatisfaction" yaml:"EmpRelationshipSatisfaction"`
	TotalWorkExperienceInYears   int    `mapstructure:"TotalWorkExperienceInYears" json:"TotalWorkExperienceInYears" yaml:"TotalWorkExperienceInYears"`
	TrainingTimesLastYear        int    `mapstructure:"TrainingTimesLastYear" json:"TrainingTimesLastYear" yaml:"TrainingTimesLastYear"`
	EmpWorkLifeBalance           int    `mapstructure:"EmpWorkLifeBalance" json:"EmpWorkLifeBalance" yaml:"EmpWorkLifeBalance"`
	ExperienceYearsAtThisCompany int    `mapstructure:"ExperienceYearsAtThisCompany" json:"ExperienceYearsAtThisCompany" yaml:"ExperienceYearsAtThisCompany"`
	ExperienceYearsInCurrentRole int    `mapstructure:"ExperienceYearsInCurrentRole" json:"ExperienceYearsInCurrentRole" yaml:"ExperienceYearsInCurrentRole"`
	YearsSinceLastPromotion      int    `mapstructure:"YearsSinceLastPromotion" json:"YearsSinceLastPromotion" yaml:"YearsSinceLastPromotion"`
	YearsWithCurrManager         int    `mapstructure:"YearsWithCurrManager" json:"YearsWithCurrManager" yaml:"YearsWithCurrManager"`
	Attrition                    string `mapstructure:"Attrition" json:"Attrition" yaml:"Attrition"`
}

// Categories returns the categorical attributes keyed by column name.
func (r Record) Categories() map[string]string {
	return map[string]string{
		ColumnGender:                  r.Gender,
		ColumnEducationBackground:     r.EducationBackground,
		ColumnMaritalStatus:           r.MaritalStatus,
		ColumnEmpDepartment:           r.EmpDepartment,
		ColumnEmpJobRole:              r.EmpJobRole,
		ColumnBusinessTravelFrequency: r.BusinessTravelFrequency,
		ColumnOverTime:                r.OverTime,
		ColumnAttrition:               r.Attrition,
	}
}

// Numbers returns the integer attributes keyed by column name.
func (r Record) Numbers() map[string]int {
	return map[string]int{
		ColumnAge:                          r.Age,
		ColumnDistanceFromHome:             r.DistanceFromHome,
		ColumnEmpEducationLevel:            r.EmpEducationLevel,
		ColumnEmpEnvironmentSatisfaction:   r.EmpEnvironmentSatisfaction,
		ColumnEmpHourlyRate:                r.EmpHourlyRate,
		ColumnEmpJobInvolvement:            r.EmpJobInvolvement,
		ColumnEmpJobLevel:                  r.EmpJobLevel,
		ColumnEmpJobSatisfaction:           r.EmpJobSatisfaction,
		ColumnNumCompaniesWorked:           r.NumCompaniesWorked,
		ColumnEmpLastSalaryHikePercent:     r.EmpLastSalaryHikePercent,
		ColumnEmpRelationshipSatisfaction:  r.EmpRelationshipSatisfaction,
		ColumnTotalWorkExperienceInYears:   r.TotalWorkExperienceInYears,
		ColumnTrainingTimesLastYear:        r.TrainingTimesLastYear,
		ColumnEmpWorkLifeBalance:           r.EmpWorkLifeBalance,
		ColumnExperienceYearsAtThisCompany: r.ExperienceYearsAtThisCompany,
		ColumnExperienceYearsInCurrentRole: r.ExperienceYearsInCurrentRole,
		ColumnYearsSinceLastPromotion:      r.YearsSinceLastPromotion,
		ColumnYearsWithCurrManager:         r.YearsWithCurrManager,
	}
}

// Values renders the record as text in Columns order.
func (r Record) Values() []string {
	categories := r.Categories()
	numbers := r.Numbers()

	values := make([]string, 0, len(Columns))
	for _, column := range Columns {
		if column == ColumnEmpNumber {
			values = append(values, r.EmpNumber)
			continue
		}
		if v, ok := categories[column]; ok {
			values = append(values, v)
			continue
		}
		values = append(values, strconv.Itoa(numbers[column]))
	}
	return values
}
