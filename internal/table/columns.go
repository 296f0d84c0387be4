package table

import (
	"cmp"

	"github.com/BradenHooton/admintable/internal/models"
)

// Default sort orders, matching the order the API returns rows in.
var (
	DefaultUserSorting = models.SortingState{{ID: "id", Desc: false}}
	DefaultPostSorting = models.SortingState{{ID: "createdAt", Desc: true}}
)

// UserColumns are the columns of the users table.
var UserColumns = []Column[*models.User]{
	{
		ID:      "id",
		Header:  "ID",
		Value:   func(u *models.User) any { return u.ID },
		Compare: func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) },
	},
	{
		ID:      "name",
		Header:  "Name",
		Value:   func(u *models.User) any { return cellString(u.Name) },
		Compare: func(a, b *models.User) int { return StringSort(a.Name, b.Name) },
	},
	{
		ID:     "age",
		Header: "Age",
		Value: func(u *models.User) any {
			if u.Age == nil {
				return ""
			}
			return *u.Age
		},
		Compare: func(a, b *models.User) int { return compareIntPtr(a.Age, b.Age) },
	},
	{
		ID:      "email",
		Header:  "Email",
		Value:   func(u *models.User) any { return cellString(u.Email) },
		Compare: func(a, b *models.User) int { return StringSort(a.Email, b.Email) },
	},
	{
		ID:      "phone",
		Header:  "Phone",
		Value:   func(u *models.User) any { return cellString(u.Phone) },
		Compare: func(a, b *models.User) int { return compareText(a.Phone, b.Phone) },
	},
	{
		ID:      "posts",
		Header:  "Posts",
		Value:   func(u *models.User) any { return len(u.Posts) },
		Compare: func(a, b *models.User) int { return cmp.Compare(len(a.Posts), len(b.Posts)) },
	},
}

// PostColumns are the columns of the posts table.
var PostColumns = []Column[*models.Post]{
	{
		ID:      "id",
		Header:  "ID",
		Value:   func(p *models.Post) any { return p.ID },
		Compare: func(a, b *models.Post) int { return cmp.Compare(a.ID, b.ID) },
	},
	{
		ID:      "title",
		Header:  "Title",
		Value:   func(p *models.Post) any { return p.TitleOrEmpty() },
		Compare: func(a, b *models.Post) int { return StringSort(a.Title, b.Title) },
	},
	{
		ID:      "content",
		Header:  "Content",
		Value:   func(p *models.Post) any { return p.ContentOrEmpty() },
		Compare: func(a, b *models.Post) int { return StringSort(a.Content, b.Content) },
	},
	{
		ID:      "author",
		Header:  "Author",
		Value:   func(p *models.Post) any { return p.AuthorName() },
		Compare: func(a, b *models.Post) int { return StringSort(a.AuthorName(), b.AuthorName()) },
	},
	{
		ID:     "createdAt",
		Header: "Created",
		Value: func(p *models.Post) any {
			if p.CreatedAt == nil {
				return ""
			}
			return p.CreatedAt.Format("2006-01-02 15:04")
		},
		Compare: func(a, b *models.Post) int { return compareTimePtr(a.CreatedAt, b.CreatedAt) },
	},
	{
		ID:     "edited",
		Header: "Edited",
		Value:  func(p *models.Post) any { return p.Edited() },
	},
}
