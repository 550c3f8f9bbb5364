// Package auth implements the static allow-list identity check. The list is
// injected configuration, not ambient global state, so tests can supply their
// own doubles.
package auth

import "strings"

// Access is the privilege level recorded on a user's database node.
type Access string

const (
	// AccessUser is the default privilege level.
	AccessUser Access = "user"
	// AccessAdmin is granted when the identity matches the configured admin.
	AccessAdmin Access = "admin"
)

// Config holds the allow-list and the admin identity.
type Config struct {
	// Users are the allowed identities, compared case-insensitively.
	Users []string
	// Admin is the identity granted admin access. It does not have to appear
	// in Users separately.
	Admin string
}

// Identity is an authenticated uploader.
type Identity struct {
	ID     string
	Access Access
}

// Authenticator matches usernames against the configured allow-list.
type Authenticator struct {
	users map[string]struct{}
	admin string
}

// New builds an Authenticator from the config. Identities are normalized to
// lower case once, here.
func New(cfg Config) *Authenticator {
	users := make(map[string]struct{}, len(cfg.Users)+1)
	for _, u := range cfg.Users {
		users[Normalize(u)] = struct{}{}
	}
	admin := Normalize(cfg.Admin)
	if admin != "" {
		users[admin] = struct{}{}
	}
	return &Authenticator{users: users, admin: admin}
}

// Normalize lower-cases and trims a username.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Authenticate checks the username against the allow-list and returns the
// identity with its access level. Returns ErrUnknownUser on no match.
func (a *Authenticator) Authenticate(username string) (Identity, error) {
	id := Normalize(username)
	if _, ok := a.users[id]; !ok {
		return Identity{}, ErrUnknownUser
	}
	return Identity{ID: id, Access: a.AccessFor(id)}, nil
}

// AccessFor returns the access level for an already-normalized identity.
func (a *Authenticator) AccessFor(id string) Access {
	if a.admin != "" && id == a.admin {
		return AccessAdmin
	}
	return AccessUser
}
