package models

// User is one row of the users table as returned by the GetUsers query.
// Every scalar except ID is nullable on the API side.
type User struct {
	ID    int     `json:"id"`
	Name  *string `json:"name"`
	Age   *int    `json:"age"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Posts []*Post `json:"posts"`
}

// DisplayName returns the user's name or "" when the API returned null.
func (u *User) DisplayName() string {
	if u == nil || u.Name == nil {
		return ""
	}
	return *u.Name
}

// FindPost returns the post with the given id among the user's posts.
func (u *User) FindPost(id int) *Post {
	if u == nil {
		return nil
	}
	for _, p := range u.Posts {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}
