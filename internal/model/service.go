package model

// Service is an offering listed on the about page. Price is free text
// ("From $500", "Contact me").
type Service struct {
	Base
	Title       string  `json:"title"       validate:"required,max=100"`
	Description string  `json:"description" validate:"required"`
	Icon        string  `json:"icon"`
	Features    TagList `json:"features"`
	Price       string  `json:"price"`
	IsVisible   bool    `json:"isVisible"`
}

func NewService() Service {
	return Service{IsVisible: true}
}

func (s *Service) TagList(field string) *TagList {
	if field == "features" {
		return &s.Features
	}
	return nil
}
