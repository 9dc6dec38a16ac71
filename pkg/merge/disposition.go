package merge

import "fmt"

// Disposition describes how a single path was resolved by a tree merge.
// "Ours" is the current branch, "theirs" the branch being merged in.
type Disposition int

const (
	Unchanged   Disposition = iota // neither side moved away from base
	OursOnly                       // current changed, source matches base
	TheirsOnly                     // source changed, current matches base
	BothSame                       // added on both sides with the same object
	Conflict                       // both changed relative to base; current kept
	AddedOurs                      // path exists only in current
	AddedTheirs                    // path absent from base, taken from source
)

func (d Disposition) String() string {
	switch d {
	case Unchanged:
		return "Unchanged"
	case OursOnly:
		return "OursOnly"
	case TheirsOnly:
		return "TheirsOnly"
	case BothSame:
		return "BothSame"
	case Conflict:
		return "Conflict"
	case AddedOurs:
		return "AddedOurs"
	case AddedTheirs:
		return "AddedTheirs"
	}
	return fmt.Sprintf("Disposition(%d)", int(d))
}

// TakesSource reports whether the merged tree holds the source side's object.
func (d Disposition) TakesSource() bool {
	return d == TheirsOnly || d == AddedTheirs
}
