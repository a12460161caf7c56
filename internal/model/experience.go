package model

type ExperienceType string

var ExperienceTypes = []Option{
	{Value: "work", Label: "Work"},
	{Value: "education", Label: "Education"},
	{Value: "certification", Label: "Certification"},
}

// Experience dates are kept as the strings the API sends; forms only need
// the YYYY-MM-DD prefix.
type Experience struct {
	Base
	Title       string         `json:"title"       validate:"required,max=200"`
	Company     string         `json:"company"     validate:"required,max=200"`
	Location    string         `json:"location"`
	Type        ExperienceType `json:"type"        validate:"required,oneof=work education certification"`
	StartDate   string         `json:"startDate"   validate:"required"`
	EndDate     string         `json:"endDate"`
	IsCurrent   bool           `json:"isCurrent"`
	Description string         `json:"description"`
	IsVisible   bool           `json:"isVisible"`
}

func NewExperience() Experience {
	return Experience{Type: "work", IsVisible: true}
}
