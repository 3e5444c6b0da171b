// Package validation provides input validation utilities
package validation

import "strings"

// ValidatePassword requires 8 to 128 characters with at least one letter and
// one digit.
func ValidatePassword(password string) error {
	return checkValue(password, "required,min=8,max=128,letters_digits")
}

// ValidateUsername allows letters, digits and @ . + - _ up to 150 characters.
func ValidateUsername(username string) error {
	return checkValue(username, "required,max=150,username")
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	return checkValue(email, "max=254,email")
}

type profileForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
}

// ProfileInput is the validated edit-profile form.
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// ParseProfile validates the edit-profile form. Email is optional.
func ParseProfile(f *Form) (ProfileInput, bool) {
	raw := profileForm{
		Username:  f.Get("username"),
		FirstName: f.Get("first_name"),
		LastName:  f.Get("last_name"),
		Email:     f.Get("email"),
	}
	check(f, &raw)
	return ProfileInput(raw), f.Valid()
}

// Passwords are taken verbatim, without trimming.
type signupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8,max=128,letters_digits"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// SignupInput is the validated registration form.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// ParseSignup validates the registration form.
func ParseSignup(f *Form) (SignupInput, bool) {
	raw := signupForm{
		Username:  f.Get("username"),
		Email:     f.Get("email"),
		Password1: f.Values["password1"],
		Password2: f.Values["password2"],
	}
	check(f, &raw)
	if f.Error("password1") == "" && strings.EqualFold(raw.Password1, raw.Username) {
		f.AddError("password1", "The password is too similar to the username.")
	}
	return SignupInput{Username: raw.Username, Email: raw.Email, Password: raw.Password1}, f.Valid()
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string
	Password string
}

// ParseLogin requires both fields.
func ParseLogin(f *Form) (LoginInput, bool) {
	raw := loginForm{Username: f.Get("username"), Password: f.Values["password"]}
	check(f, &raw)
	return LoginInput(raw), f.Valid()
}
