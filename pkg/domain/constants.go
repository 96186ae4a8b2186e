package domain

// Well-known prop keys.
const (
	// PropChildren holds the text content of a node (string). As an array it is
	// pre-canonical input and never stored.
	PropChildren  = "children"
	PropStyle     = "style"
	PropClassName = "className"
	// PropPageID tags a root node with the page it belongs to.
	PropPageID = "pageId"
)

// DefaultPageID is the page of every root without an explicit pageId.
const DefaultPageID = "home"

// Element types the engine gives special meaning to. The vocabulary is open:
// anything else is stored as-is and rendered as a generic container.
const (
	TypeDiv       = "div"
	TypeContainer = "container"
	TypeFrame     = "frame"
	TypeCard      = "card"
	TypeChart     = "chart"
	TypeText      = "text"
	TypeImage     = "image"
)

// Position tells Reorder where the dragged node lands relative to the target.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInside Position = "inside"
)

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case PositionBefore, PositionAfter, PositionInside:
		return true
	}
	return false
}
