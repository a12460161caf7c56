package model

type BlogCategory string

var BlogCategories = []Option{
	{Value: "general", Label: "General"},
	{Value: "technology", Label: "Technology"},
	{Value: "tutorial", Label: "Tutorial"},
	{Value: "news", Label: "News"},
	{Value: "personal", Label: "Personal"},
}

// BlogPost content is markdown. Views and ReadTime are computed by the API
// and are omitted from writes while zero.
type BlogPost struct {
	Base
	Title       string       `json:"title"       validate:"required,max=200"`
	Excerpt     string       `json:"excerpt"     validate:"max=500"`
	Content     string       `json:"content"     validate:"required"`
	Category    BlogCategory `json:"category"    validate:"required,oneof=general technology tutorial news personal"`
	Thumbnail   string       `json:"thumbnail"`
	Tags        TagList      `json:"tags"`
	IsPublished bool         `json:"isPublished"`
	ReadTime    int          `json:"readTime,omitempty"`
	Views       int          `json:"views,omitempty"`
	Slug        string       `json:"slug,omitempty"`
}

func NewBlogPost() BlogPost {
	return BlogPost{Category: "general"}
}

func (b *BlogPost) TagList(field string) *TagList {
	if field == "tags" {
		return &b.Tags
	}
	return nil
}

func (b *BlogPost) ImageField(field string) *string {
	if field == "thumbnail" {
		return &b.Thumbnail
	}
	return nil
}
