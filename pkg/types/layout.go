package types

// NodeKind identifies a layout node variant
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDir       NodeKind = "dir"
	KindParam     NodeKind = "param"
	KindMany      NodeKind = "many"
	KindRecursive NodeKind = "recursive"
	KindEither    NodeKind = "either"
)

// LayoutNode is one node in the expected-structure tree. The tree is
// read-only configuration; it is never mutated during checking.
//
// Each kind is its own type so dispatch over kinds is a type switch and
// kind-specific fields cannot be set on the wrong variant.
type LayoutNode interface {
	Kind() NodeKind
	Base() *NodeBase
}

// NodeBase holds the attributes every node kind shares
type NodeBase struct {
	// Pattern is a glob the matched basename must satisfy, if set
	Pattern string

	// Case constrains the naming style of the matched basename
	Case CaseStyle

	// Optional suppresses the missing-entry violation when the node
	// matches nothing
	Optional bool
}

// Base returns the shared attributes
func (b *NodeBase) Base() *NodeBase { return b }

// FileNode expects a file at its path
type FileNode struct {
	NodeBase
}

func (*FileNode) Kind() NodeKind { return KindFile }

// DirChild is one named child of a DirNode. Meta children do not name a
// literal entry; their node is applied to the directory's otherwise
// unmatched children.
type DirChild struct {
	Name string
	Node LayoutNode
	Meta bool
}

// DirNode expects a directory at its path
type DirNode struct {
	NodeBase

	// Children lists expected entries in declaration order
	Children []DirChild

	// Strict rejects any direct child not accounted for by Children
	Strict bool
}

func (*DirNode) Kind() NodeKind { return KindDir }

// ParamNode matches a single dynamic direct child of its parent
type ParamNode struct {
	NodeBase

	// Child is applied at the matched entry's path
	Child LayoutNode
}

func (*ParamNode) Kind() NodeKind { return KindParam }

// ManyNode matches every qualifying direct child of its parent
type ManyNode struct {
	NodeBase

	Child LayoutNode

	// Min is the minimum number of matches; zero means no minimum
	Min int

	// Max is the maximum number of matches; zero means unbounded
	Max int
}

func (*ManyNode) Kind() NodeKind { return KindMany }

// RecursiveNode matches qualifying children and descends into matched
// directories with the same definition
type RecursiveNode struct {
	NodeBase

	Child LayoutNode

	// MaxDepth bounds the recursion; zero means unbounded
	MaxDepth int
}

func (*RecursiveNode) Kind() NodeKind { return KindRecursive }

// EitherNode tries each variant in order; the first one that matches wins
type EitherNode struct {
	NodeBase

	Variants []LayoutNode
}

func (*EitherNode) Kind() NodeKind { return KindEither }
