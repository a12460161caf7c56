package model

type Testimonial struct {
	Base
	Name      string `json:"name"      validate:"required,max=100"`
	Role      string `json:"role"`
	Company   string `json:"company"`
	Content   string `json:"content"   validate:"required"`
	Avatar    string `json:"avatar"`
	Rating    int    `json:"rating"    validate:"min=1,max=5"`
	IsVisible bool   `json:"isVisible"`
}

func NewTestimonial() Testimonial {
	return Testimonial{Rating: 5, IsVisible: true}
}

func (t *Testimonial) ImageField(field string) *string {
	if field == "avatar" {
		return &t.Avatar
	}
	return nil
}
