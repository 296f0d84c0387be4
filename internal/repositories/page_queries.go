package repositories

import "github.com/BradenHooton/admintable/internal/models"

// UsersData is the decoded data of UsersQuery.
type UsersData struct {
	Users *struct {
		Data       []*models.User `json:"data"`
		TotalCount *int           `json:"totalCount"`
	} `json:"users"`
}

// PostsData is the decoded data of PostsQuery.
type PostsData struct {
	Posts *struct {
		Data       []*models.Post `json:"data"`
		TotalCount *int           `json:"totalCount"`
	} `json:"posts"`
}

// ExtractUsers returns the non-null user rows.
func ExtractUsers(d *UsersData) []*models.User {
	if d == nil || d.Users == nil {
		return nil
	}
	return compact(d.Users.Data)
}

// ExtractUsersTotal returns the filtered user total when the API reported one.
func ExtractUsersTotal(d *UsersData) *int {
	if d == nil || d.Users == nil {
		return nil
	}
	return d.Users.TotalCount
}

// ExtractPosts returns the non-null post rows.
func ExtractPosts(d *PostsData) []*models.Post {
	if d == nil || d.Posts == nil {
		return nil
	}
	return compact(d.Posts.Data)
}

// ExtractPostsTotal returns the filtered post total when the API reported one.
func ExtractPostsTotal(d *PostsData) *int {
	if d == nil || d.Posts == nil {
		return nil
	}
	return d.Posts.TotalCount
}

func compact[T any](rows []*T) []*T {
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
