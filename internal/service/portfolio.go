package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sakif/portfolio-cms/internal/fetch"
	"github.com/sakif/portfolio-cms/internal/model"
)

// FeaturedOnHome is how many featured projects the home page shows.
const FeaturedOnHome = 3

// AllCategories is the filter chip that disables category filtering.
const AllCategories = "all"

// PortfolioSources are the read endpoints behind the public site. Every
// call is unauthenticated.
type PortfolioSources struct {
	About      interface{ Get(context.Context) (*model.About, error) }
	Skills     Collection[model.Skill]
	Projects   Catalog[model.Project]
	Blogs      Catalog[model.BlogPost]
	Experience Collection[model.Experience]
	Services   Collection[model.Service]
}

// PortfolioService assembles the public pages.
type PortfolioService struct {
	src PortfolioSources
}

func NewPortfolioService(src PortfolioSources) *PortfolioService {
	return &PortfolioService{src: src}
}

type HomePage struct {
	About    model.About
	Featured []model.Project
	Skills   []model.SkillGroup
}

// Home joins about, featured projects and skills; one failure fails the
// page.
func (s *PortfolioService) Home(ctx context.Context) (*HomePage, error) {
	var (
		about    *model.About
		featured []model.Project
		skills   []model.Skill
	)
	err := fetch.All(ctx,
		fetch.Into(&about, s.src.About.Get),
		fetch.Into(&featured, listWith[model.Project](s.src.Projects, url.Values{"featured": {"true"}})),
		fetch.Into(&skills, listWith(s.src.Skills, nil)),
	)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: home: %w", err)
	}

	featured = visibleProjects(featured)
	return &HomePage{
		About:    *about,
		Featured: featured[:min(FeaturedOnHome, len(featured))],
		Skills:   model.GroupSkills(visible(skills, func(s model.Skill) bool { return s.IsVisible })),
	}, nil
}

type AboutPage struct {
	About      model.About
	Experience []model.Experience
	Services   []model.Service
}

func (s *PortfolioService) AboutPage(ctx context.Context) (*AboutPage, error) {
	var (
		about      *model.About
		experience []model.Experience
		services   []model.Service
	)
	err := fetch.All(ctx,
		fetch.Into(&about, s.src.About.Get),
		fetch.Into(&experience, listWith(s.src.Experience, nil)),
		fetch.Into(&services, listWith(s.src.Services, nil)),
	)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: about: %w", err)
	}

	return &AboutPage{
		About:      *about,
		Experience: visible(experience, func(e model.Experience) bool { return e.IsVisible }),
		Services:   visible(services, func(s model.Service) bool { return s.IsVisible }),
	}, nil
}

type ProjectsPage struct {
	Projects   []model.Project
	Categories []string
	Selected   string
}

// Projects lists visible projects. Categories are "all" followed by each
// category in first-seen order; an unknown selection falls back to "all".
func (s *PortfolioService) Projects(ctx context.Context, category string) (*ProjectsPage, error) {
	projects, err := s.src.Projects.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: projects: %w", err)
	}
	projects = visibleProjects(projects)

	page := &ProjectsPage{Categories: ProjectCategories(projects), Selected: AllCategories}
	for _, c := range page.Categories {
		if c == category {
			page.Selected = category
		}
	}
	page.Projects = FilterProjects(projects, page.Selected)
	return page, nil
}

func ProjectCategories(projects []model.Project) []string {
	cats := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, p := range projects {
		c := string(p.Category)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cats = append(cats, c)
	}
	return cats
}

func FilterProjects(projects []model.Project, category string) []model.Project {
	if category == "" || category == AllCategories {
		return projects
	}
	return visible(projects, func(p model.Project) bool { return string(p.Category) == category })
}

func (s *PortfolioService) Project(ctx context.Context, slug string) (*model.Project, error) {
	p, err := s.src.Projects.BySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: project %s: %w", slug, err)
	}
	return p, nil
}

// Blog lists published posts.
func (s *PortfolioService) Blog(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.src.Blogs.List(ctx, url.Values{"published": {"true"}})
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: blog: %w", err)
	}
	return visible(posts, func(p model.BlogPost) bool { return p.IsPublished }), nil
}

// Post loads one post by slug. The API counts the read as a view.
func (s *PortfolioService) Post(ctx context.Context, slug string) (*model.BlogPost, error) {
	p, err := s.src.Blogs.BySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: post %s: %w", slug, err)
	}
	return p, nil
}

// ContactInfo is the about record shown beside the contact form.
func (s *PortfolioService) ContactInfo(ctx context.Context) (*model.About, error) {
	about, err := s.src.About.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: contact info: %w", err)
	}
	return about, nil
}

func visibleProjects(projects []model.Project) []model.Project {
	return visible(projects, func(p model.Project) bool { return p.IsVisible })
}

func visible[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
