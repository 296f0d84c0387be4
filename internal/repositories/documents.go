package repositories

import "github.com/BradenHooton/admintable/internal/graphql"

// UsersQuery fetches a page of users with their posts and the filtered total.
var UsersQuery = graphql.Document{
	Name: "GetUsers",
	Query: `query GetUsers($filters: UserFilters, $limit: Int, $offset: Int) {
  users(filters: $filters, limit: $limit, offset: $offset) {
    data {
      id
      name
      age
      email
      phone
      posts {
        id
        title
        content
        createdAt
        updatedAt
      }
    }
    totalCount
  }
}`,
}

// PostsQuery fetches a page of posts with the author's name and the filtered total.
var PostsQuery = graphql.Document{
	Name: "GetPosts",
	Query: `query GetPosts($filters: PostFilters, $limit: Int, $offset: Int) {
  posts(filters: $filters, limit: $limit, offset: $offset) {
    data {
      id
      title
      content
      createdAt
      updatedAt
      user {
        name
      }
    }
    totalCount
  }
}`,
}

var createPostMutation = graphql.Document{
	Name: "CreatePost",
	Query: `mutation CreatePost($input: CreatePostInput!) {
  createPost(input: $input) {
    id
    title
    content
    createdAt
    updatedAt
  }
}`,
}

var updatePostMutation = graphql.Document{
	Name: "UpdatePost",
	Query: `mutation UpdatePost($input: UpdatePostInput!) {
  updatePost(input: $input) {
    id
    title
    content
    updatedAt
  }
}`,
}

var deletePostMutation = graphql.Document{
	Name: "DeletePost",
	Query: `mutation DeletePost($id: Int!) {
  deletePost(id: $id)
}`,
}
