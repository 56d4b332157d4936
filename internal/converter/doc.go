// Package converter maps automation plans between their persisted record
// form and their in-memory definition form.
//
// Every field is copied verbatim in both directions. Parameter maps and path
// slices are cloned so that a built definition never shares mutable state
// with its source record. Functions here are pure and safe for concurrent use
// on independent inputs.
package converter
