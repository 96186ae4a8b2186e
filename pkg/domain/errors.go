package domain

import "errors"

// ErrNodeNotFound is returned when a referenced node id is not in the tree.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateID is returned when a node id is already taken.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrInvalidNode is returned for nodes without a usable id or type.
var ErrInvalidNode = errors.New("invalid node")

// ErrCycle is returned when a parent link would make a node its own ancestor.
var ErrCycle = errors.New("parent cycle")
