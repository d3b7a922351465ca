// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. Expiry and cooldown checks compare values returned by
// Now, so the real implementation keeps the monotonic clock reading that
// time.Now attaches; callers must not strip it with UTC, In or Round(0)
// before subtracting.
//
// Fake is a settable implementation for tests.
package clock
