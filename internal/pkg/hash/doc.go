// Package hash hashes and verifies secrets behind one small interface.
//
// Bcrypt and Argon2id are salted password hashers; HMACSHA256 is a
// deterministic keyed MAC for values that must be searchable by hash.
// Callers pick an implementation at wiring time and depend only on Hash.
package hash
