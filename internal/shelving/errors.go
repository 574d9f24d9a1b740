package shelving

import "errors"

var (
	// ErrTooFewItems is returned when a danger scan is requested for fewer than four items.
	ErrTooFewItems = errors.New("at least four items are required to look for dangerous groups")
	// ErrInvalidItem is returned when an item carries a negative or non-finite weight or value.
	ErrInvalidItem = errors.New("item weight and value must be finite non-negative numbers")
	// ErrInvalidCapacity is returned when the shelf capacity is not a finite positive number.
	ErrInvalidCapacity = errors.New("capacity must be a finite positive number")
	// ErrInvalidMaxPerShelf is returned when the per-shelf item limit is not positive.
	ErrInvalidMaxPerShelf = errors.New("max items per shelf must be a positive integer")
	// ErrSearchAborted is returned when a search is cancelled or runs out of budget
	// before completing. It never means that no solution exists.
	ErrSearchAborted = errors.New("search aborted")
)
