package domain

import "time"

// RevisionMeta is the listing view of a snapshot, without the tree payload.
type RevisionMeta struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// Revision is an immutable, named capture of the whole budget tree.
type Revision struct {
	RevisionMeta
	Tree []*TreeNode `json:"tree"`
}
