package sync

import "github.com/inkwell-cms/inkwell/internal/content"

type OpType uint8

const (
	OpCreate OpType = iota
	OpUpdate
	OpRename
	OpTypeChange
	OpConflict
	OpDelete
)

var opTypeNames = []string{
	"Create",
	"Update",
	"Rename",
	"TypeChange",
	"Conflict",
	"Delete",
}

func (op OpType) String() string {
	return opTypeNames[op]
}

// ConflictReason tells the operator which kind of remote change collided
// with local edits.
type ConflictReason string

const (
	ReasonContent     ConflictReason = "content"
	ReasonSlug        ConflictReason = "slug"
	ReasonType        ConflictReason = "type"
	ReasonSlugAndType ConflictReason = "slug+type"
)

// Operation pairs a local item with its remote counterpart for one of the
// classifier's buckets. Fields are populated per bucket: Create has no
// Remote, Delete has no Local, Rename carries OldSlug, TypeChange carries
// OldType/NewType (and OldSlug when the slug moved too), Conflict carries
// Reason.
type Operation struct {
	Op      OpType
	Local   *content.LocalItem
	Remote  *content.RemoteItem
	Base    *content.RemoteItem
	OldSlug string
	OldType string
	NewType string
	Reason  ConflictReason
}

// ChangeSet is the classifier output, partitioned by operation kind. Each
// local and remote item appears in at most one bucket; items already in
// sync appear nowhere.
type ChangeSet struct {
	Create     []*Operation
	Update     []*Operation
	Rename     []*Operation
	TypeChange []*Operation
	Conflict   []*Operation
	Delete     []*Operation
}

// Total counts the operations across all buckets.
func (cs *ChangeSet) Total() int {
	return len(cs.Create) + len(cs.Update) + len(cs.Rename) +
		len(cs.TypeChange) + len(cs.Conflict) + len(cs.Delete)
}

// Empty reports whether the tree is fully in sync.
func (cs *ChangeSet) Empty() bool {
	return cs.Total() == 0
}
