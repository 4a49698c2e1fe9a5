package config

import "fmt"

// ErrDatasetNotFound is returned by Dataset when no block carries the
// requested name.
type ErrDatasetNotFound struct {
	Name string
}

func (e ErrDatasetNotFound) Error() string {
	return fmt.Sprintf("config: dataset (%v) not found", e.Name)
}

// ErrDatasetNameRequired is returned by Validate for a dataset block
// with no name. Index is the block's position in the file.
type ErrDatasetNameRequired struct {
	Index int
}

func (e ErrDatasetNameRequired) Error() string {
	return fmt.Sprintf("config: dataset block %v is missing a name", e.Index)
}

// ErrDatasetNameDuplicated is returned by Validate when two dataset
// blocks share a name.
type ErrDatasetNameDuplicated struct {
	Name string
}

func (e ErrDatasetNameDuplicated) Error() string {
	return fmt.Sprintf("config: dataset name (%v) used more than once", e.Name)
}

// ErrInvalidCount is returned by Validate for a negative layer or
// feature count.
type ErrInvalidCount struct {
	Dataset string
	Field   string
	Value   int
}

func (e ErrInvalidCount) Error() string {
	return fmt.Sprintf("config: dataset (%v): %v must not be negative, got %v", e.Dataset, e.Field, e.Value)
}

// ErrInvalidOrigin is returned by Validate when an origin does not hold
// exactly two values.
type ErrInvalidOrigin struct {
	Dataset string
	Length  int
}

func (e ErrInvalidOrigin) Error() string {
	return fmt.Sprintf("config: dataset (%v): origin wants [x, y], got %v values", e.Dataset, e.Length)
}
