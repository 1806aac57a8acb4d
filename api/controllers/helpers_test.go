package controllers

import (
	"github.com/gabrielasoto/aurelia-backend/internal/session"
)

func sessionUser() session.User {
	return session.User{ID: "u1", Name: "Maya", Email: "maya@example.com", Role: session.RoleUser}
}
