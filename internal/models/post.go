package models

import "time"

// Post is a post row. Author is only populated by the GetPosts query.
type Post struct {
	ID        int         `json:"id"`
	Title     *string     `json:"title"`
	Content   *string     `json:"content"`
	CreatedAt *time.Time  `json:"createdAt"`
	UpdatedAt *time.Time  `json:"updatedAt"`
	User      *PostAuthor `json:"user,omitempty"`
}

// PostAuthor is the nested author selection of the GetPosts query.
type PostAuthor struct {
	Name *string `json:"name"`
}

// TitleOrEmpty returns the title, treating null as "".
func (p *Post) TitleOrEmpty() string {
	if p == nil || p.Title == nil {
		return ""
	}
	return *p.Title
}

// ContentOrEmpty returns the content, treating null as "".
func (p *Post) ContentOrEmpty() string {
	if p == nil || p.Content == nil {
		return ""
	}
	return *p.Content
}

// AuthorName returns the nested author name or "".
func (p *Post) AuthorName() string {
	if p == nil || p.User == nil || p.User.Name == nil {
		return ""
	}
	return *p.User.Name
}

// Edited reports whether the post was modified after creation.
// Both timestamps must be present.
func (p *Post) Edited() bool {
	if p == nil || p.CreatedAt == nil || p.UpdatedAt == nil {
		return false
	}
	return !p.UpdatedAt.Equal(*p.CreatedAt)
}

// CreatePostInput mirrors the API's CreatePostInput.
type CreatePostInput struct {
	UserID  int     `json:"userId"`
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
}

// UpdatePostInput mirrors the API's UpdatePostInput. Nil fields are left
// unchanged by the server.
type UpdatePostInput struct {
	ID      int     `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
