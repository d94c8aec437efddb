package identity

import "errors"

// Code identifies why the identity provider refused an operation.
type Code string

const (
	CodeUserNotFound    Code = "user-not-found"
	CodeWrongPassword   Code = "wrong-password"
	CodeInvalidEmail    Code = "invalid-email"
	CodeUserDisabled    Code = "user-disabled"
	CodeTooManyRequests Code = "too-many-requests"
	CodeEmailInUse      Code = "email-already-in-use"
	CodeWeakPassword    Code = "weak-password"
)

// AuthError is returned by SignIn and SignUp when the provider rejects the
// credentials. Compare with errors.Is against the Err* values.
type AuthError struct {
	Code Code
}

func (e *AuthError) Error() string { return "identity: " + string(e.Code) }

// Is matches another *AuthError with the same code.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

// Message is the text shown to the user.
func (e *AuthError) Message() string {
	if m, ok := messages[e.Code]; ok {
		return m
	}
	return SignInFailedMessage
}

var (
	ErrUserNotFound    = &AuthError{Code: CodeUserNotFound}
	ErrWrongPassword   = &AuthError{Code: CodeWrongPassword}
	ErrInvalidEmail    = &AuthError{Code: CodeInvalidEmail}
	ErrUserDisabled    = &AuthError{Code: CodeUserDisabled}
	ErrTooManyRequests = &AuthError{Code: CodeTooManyRequests}
	ErrEmailInUse      = &AuthError{Code: CodeEmailInUse}
	ErrWeakPassword    = &AuthError{Code: CodeWeakPassword}
)

// Fallback messages for failures that carry no AuthError.
const (
	SignInFailedMessage = "Login failed. Please check your credentials."
	SignUpFailedMessage = "Failed to submit application. Please try again."
)

var messages = map[Code]string{
	CodeUserNotFound:    "No user found with this email.",
	CodeWrongPassword:   "Incorrect password.",
	CodeInvalidEmail:    "Invalid email address.",
	CodeUserDisabled:    "This account has been disabled.",
	CodeTooManyRequests: "Too many failed attempts. Please try again later.",
	CodeEmailInUse:      "This email is already registered. Please login or use a different email.",
	CodeWeakPassword:    "Password is too weak. Use at least 6 characters.",
}

// SignInMessage maps any SignIn error to its user-facing text.
func SignInMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Message()
	}
	return SignInFailedMessage
}

// SignUpMessage maps any SignUp error to its user-facing text.
func SignUpMessage(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeEmailInUse, CodeWeakPassword, CodeInvalidEmail:
			return messages[ae.Code]
		}
	}
	return SignUpFailedMessage
}
