package model

type ProjectCategory string

var ProjectCategories = []Option{
	{Value: "web", Label: "Web"},
	{Value: "mobile", Label: "Mobile"},
	{Value: "api", Label: "API"},
	{Value: "design", Label: "Design"},
	{Value: "other", Label: "Other"},
}

// Project is a portfolio entry. Slug is assigned by the API from the title
// and is the public lookup key; ID is used for admin edits.
type Project struct {
	Base
	Title            string          `json:"title"            validate:"required,max=200"`
	ShortDescription string          `json:"shortDescription" validate:"max=300"`
	Description      string          `json:"description"      validate:"required"`
	Category         ProjectCategory `json:"category"         validate:"required,oneof=web mobile api design other"`
	LiveURL          string          `json:"liveUrl"          validate:"omitempty,url"`
	GithubURL        string          `json:"githubUrl"        validate:"omitempty,url"`
	Thumbnail        string          `json:"thumbnail"`
	Images           TagList         `json:"images"`
	Technologies     TagList         `json:"technologies"`
	Featured         bool            `json:"featured"`
	IsVisible        bool            `json:"isVisible"`
	Slug             string          `json:"slug,omitempty"`
}

func NewProject() Project {
	return Project{Category: "web", IsVisible: true}
}

func (p *Project) TagList(field string) *TagList {
	switch field {
	case "technologies":
		return &p.Technologies
	case "images":
		return &p.Images
	}
	return nil
}

func (p *Project) ImageField(field string) *string {
	if field == "thumbnail" {
		return &p.Thumbnail
	}
	return nil
}
