package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/portfolio-cms/internal/apperror"
	"github.com/sakif/portfolio-cms/internal/model"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		input any
		field string
		want  string
	}{
		{"required uses the label", &model.Project{Category: "web", Description: "d"}, "title", "Title is required"},
		{"camel case is split", &model.Project{Title: "t", Description: "d", Category: "web", ShortDescription: string(make([]byte, 301))}, "shortDescription", "Short description must be 300 characters or less"},
		{"url", &model.Project{Title: "t", Description: "d", Category: "web", LiveURL: "nope"}, "liveUrl", "Live url must be a valid URL"},
		{"oneof lists choices", &model.Skill{Name: "Go", Category: "cooking"}, "category", "Category must be one of: frontend, backend, database, devops, tools, other"},
		{"numeric range", &model.Testimonial{Name: "A", Content: "c", Rating: 9}, "rating", "Rating must be at most 5"},
		{"resume must be a link", &model.About{Resume: "my cv"}, "resume", "Resume must be a valid URL"},
		{"nested fields keep their path", &model.About{SocialLinks: model.SocialLinks{GitHub: "github"}}, "socialLinks.github", "Github must be a valid URL"},
		{"password length", &model.Registration{Name: "A", Email: "a@b.co", Password: "123"}, "password", "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			assert.Equal(t, tt.want, apperror.FieldErrors(err)[tt.field])
		})
	}
}

func TestValidator_ValidPasses(t *testing.T) {
	p := model.NewProject()
	p.Title, p.Description = "Site", "A site"
	assert.NoError(t, NewValidator().Struct(&p))
}
