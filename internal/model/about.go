package model

// About is the singleton "about me" record shown on the home, about and
// contact pages.
type About struct {
	Base
	Title       string      `json:"title"`
	Subtitle    string      `json:"subtitle"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Resume      string      `json:"resume"      validate:"omitempty,url"`
	Stats       []Stat      `json:"stats"`
	SocialLinks SocialLinks `json:"socialLinks"`
}

// Stat is one headline number, e.g. {"Years Experience", "5+"}.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type SocialLinks struct {
	GitHub    string `json:"github"    validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin"  validate:"omitempty,url"`
	Twitter   string `json:"twitter"   validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	Email     string `json:"email"     validate:"omitempty,email"`
}

// AddStat appends an empty stat row for the admin to fill in.
func (a *About) AddStat() {
	a.Stats = append(a.Stats, Stat{})
}

// RemoveStat drops the row at index i, keeping the others in order.
func (a *About) RemoveStat(i int) bool {
	if i < 0 || i >= len(a.Stats) {
		return false
	}
	next := make([]Stat, 0, len(a.Stats)-1)
	next = append(next, a.Stats[:i]...)
	a.Stats = append(next, a.Stats[i+1:]...)
	return true
}

func (a *About) ImageField(field string) *string {
	if field == "image" {
		return &a.Image
	}
	return nil
}
