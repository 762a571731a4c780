package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildEmail(t *testing.T) {
	assert.Equal(t, "alice+child.4f21ab90@example.com", ChildEmail("alice@example.com", "4f21ab90"))
	assert.Equal(t, "a+b+child.x@sub.example.com", ChildEmail("a+b@sub.example.com", "x"))
}

func TestIsChildEmail(t *testing.T) {
	assert.True(t, IsChildEmail("alice+child.4f21ab90@example.com"))
	assert.False(t, IsChildEmail("alice@example.com"))
	// the marker only counts in the local part
	assert.False(t, IsChildEmail("alice@child.example.com"))
	assert.False(t, IsChildEmail("not-an-email"))
}

func TestProfileValidateDefaultsRole(t *testing.T) {
	p := Profile{Name: "Alice", Email: "alice@example.com"}
	assert.NoError(t, p.Validate())
	assert.Equal(t, RoleUser, p.Role)

	bad := Profile{Name: "A", Email: "alice@example.com"}
	assert.Error(t, bad.Validate())

	noAt := Profile{Name: "Alice", Email: "alice.example.com"}
	assert.Error(t, noAt.Validate())
}
