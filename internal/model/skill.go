package model

type SkillCategory string

const (
	SkillFrontend SkillCategory = "frontend"
	SkillBackend  SkillCategory = "backend"
	SkillDatabase SkillCategory = "database"
	SkillDevOps   SkillCategory = "devops"
	SkillTools    SkillCategory = "tools"
	SkillOther    SkillCategory = "other"
)

// SkillCategories is the display order used when grouping skills.
var SkillCategories = []Option{
	{Value: string(SkillFrontend), Label: "Frontend"},
	{Value: string(SkillBackend), Label: "Backend"},
	{Value: string(SkillDatabase), Label: "Database"},
	{Value: string(SkillDevOps), Label: "DevOps"},
	{Value: string(SkillTools), Label: "Tools"},
	{Value: string(SkillOther), Label: "Other"},
}

type Skill struct {
	Base
	Name        string        `json:"name"        validate:"required,max=100"`
	Category    SkillCategory `json:"category"    validate:"required,oneof=frontend backend database devops tools other"`
	Proficiency int           `json:"proficiency" validate:"min=0,max=100"`
	Icon        string        `json:"icon"`
	Order       int           `json:"order"       validate:"min=0"`
	IsVisible   bool          `json:"isVisible"`
}

// NewSkill returns the defaults a blank create form starts from.
func NewSkill() Skill {
	return Skill{Category: SkillFrontend, Proficiency: 50, IsVisible: true}
}

// SkillGroup is a category heading with the skills under it.
type SkillGroup struct {
	Category Option
	Skills   []Skill
}

// GroupSkills buckets skills by category in SkillCategories order. Empty
// categories are left out; unknown categories land in "other".
func GroupSkills(skills []Skill) []SkillGroup {
	buckets := make(map[string][]Skill, len(SkillCategories))
	for _, s := range skills {
		key := string(s.Category)
		if !knownSkillCategory(key) {
			key = string(SkillOther)
		}
		buckets[key] = append(buckets[key], s)
	}

	var groups []SkillGroup
	for _, c := range SkillCategories {
		if len(buckets[c.Value]) == 0 {
			continue
		}
		groups = append(groups, SkillGroup{Category: c, Skills: buckets[c.Value]})
	}
	return groups
}

func knownSkillCategory(v string) bool {
	for _, c := range SkillCategories {
		if c.Value == v {
			return true
		}
	}
	return false
}
