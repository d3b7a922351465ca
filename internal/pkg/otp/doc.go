// Package otp generates the numeric one-time passcodes sent over SMS.
//
// Codes are six decimal digits without a leading zero, drawn uniformly from
// crypto/rand so past codes say nothing about the next one.
package otp
