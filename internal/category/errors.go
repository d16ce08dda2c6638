package category

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrParentNotFound   = errors.New("parent category not found")
	ErrCyclicParent     = errors.New("category cannot be its own ancestor")
)
