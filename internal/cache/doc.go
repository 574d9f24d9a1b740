// Package cache keeps computed shelf plans so identical requests over an
// unchanged catalog skip the exponential search.
package cache
