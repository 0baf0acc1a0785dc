// Package validator validates request and domain structs by tag.
//
// Handlers and use cases depend on the Validator interface; the concrete
// implementation wraps go-playground/validator v10 with English
// translations so failures read as user-facing messages.
package validator
