// Package mail sends email behind a small provider-agnostic interface.
//
// Use cases build a Message and hand it to Mail; the concrete transport
// (SMTP in this repo) is chosen at wiring time.
package mail
