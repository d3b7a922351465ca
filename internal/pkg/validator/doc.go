// Package validator provides a small validation abstraction for request and
// dependency structs.
//
// Business code depends on the Validator interface; the go-playground
// validator v10 implementation lives here together with the custom rules the
// OTP endpoints need.
package validator

// Validator validates struct tags.
type Validator interface {
	Validate(data any) error
}
