// Package clock abstracts time.Now behind the Clocker interface.
//
// Code that reasons about expiry or scheduling takes a Clocker instead of
// reading the system clock, which lets tests pin time to a known value.
package clock
