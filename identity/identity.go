// Package identity abstracts the external user directory. The core only
// reads profile fields from it and tolerates missing users.
package identity

import "context"

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	BirthDate string `json:"birthDate"`
}

type Resolver interface {
	// GetUsersByIDs returns profiles for the given user ids. Ids with no
	// matching user are simply absent from the result.
	GetUsersByIDs(ctx context.Context, userIDs []string) ([]*User, error)
}

// Index builds a lookup map over resolved users.
func Index(users []*User) map[string]*User {
	m := make(map[string]*User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return m
}
