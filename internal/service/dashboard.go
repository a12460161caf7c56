package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
)

// RecentMessages is how many messages the dashboard previews.
const RecentMessages = 5

type DashboardStats struct {
	Projects int
	Blogs    int
	Messages int
	Skills   int
	Recent   []model.ContactMessage
}

type DashboardService struct {
	projects Collection[model.Project]
	blogs    Collection[model.BlogPost]
	messages Collection[model.ContactMessage]
	skills   Collection[model.Skill]
}

func NewDashboardService(
	projects Collection[model.Project],
	blogs Collection[model.BlogPost],
	messages Collection[model.ContactMessage],
	skills Collection[model.Skill],
) *DashboardService {
	return &DashboardService{projects: projects, blogs: blogs, messages: messages, skills: skills}
}

// Summary fetches the four collections concurrently. Any failure fails the
// whole summary.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardStats, error) {
	var (
		projects []model.Project
		blogs    []model.BlogPost
		messages []model.ContactMessage
		skills   []model.Skill
	)

	err := fetch.All(ctx,
		fetch.Into(&projects, listWith(s.projects, url.Values{"visible": {"all"}})),
		fetch.Into(&blogs, listWith(s.blogs, nil)),
		fetch.Into(&messages, listWith(s.messages, nil)),
		fetch.Into(&skills, listWith(s.skills, nil)),
	)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: %w", err)
	}

	return &DashboardStats{
		Projects: len(projects),
		Blogs:    len(blogs),
		Messages: len(messages),
		Skills:   len(skills),
		Recent:   messages[:min(RecentMessages, len(messages))],
	}, nil
}

func listWith[T any](c Collection[T], q url.Values) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) { return c.List(ctx, q) }
}
