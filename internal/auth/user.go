package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role int

const (
	RoleAdmin Role = iota
	RoleReadWrite
	RoleReadOnly
)

var InsufficientPermissions = errors.New("Insufficient permissions")

type User struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Password []byte `json:"password"`
	Role     Role   `json:"role"`
}

func NewUser(name, password string, role Role) *User {
	// password max size is 72 bytes because of bcrypt limit
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return &User{uuid.New().String(), name, hashed, role}
}

func (u *User) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

func (u *User) HasClearance(r Role) bool { return u.Role <= r }
