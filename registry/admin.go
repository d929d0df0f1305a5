package registry

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredential is the single operator secret. Both the dashboard login
// form and the X-Admin-Auth listing header check go through this predicate
// so the comparison exists exactly once.
type AdminCredential struct {
	Username     string
	Password     string
	PasswordHash string // optional bcrypt hash; takes precedence over Password
}

// CheckPassword verifies the operator password. When a bcrypt hash is
// configured it is used, otherwise a constant-time plaintext compare.
func (a AdminCredential) CheckPassword(password string) bool {
	if password == "" {
		return false
	}
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	}
	if a.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1
}

// CheckLogin verifies the username/password pair from the login form.
func (a AdminCredential) CheckLogin(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(a.Username), []byte(username)) != 1 {
		return false
	}
	return a.CheckPassword(password)
}
