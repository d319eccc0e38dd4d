package model

// GroupKind identifies why a set of files was clustered together.
type GroupKind string

// Group kind constants.
const (
	GroupProject    GroupKind = "project"
	GroupProgram    GroupKind = "program"
	GroupWeb        GroupKind = "web"
	GroupMedia      GroupKind = "media"
	GroupSameStem   GroupKind = "same_stem"
	GroupIndividual GroupKind = "individual"
)

// AssociationGroup is a cluster of files that must move together to
// preserve a dependency relationship. MainFile decides the group's target
// folder; for individual groups it equals the single member.
type AssociationGroup struct {
	ID       string    `json:"id"`
	Kind     GroupKind `json:"kind"`
	MainFile string    `json:"main_file"`
	Members  []string  `json:"members"`
}

// GroupingReport summarises the association analysis of a directory tree.
// Groups form a partition of the scanned files: no file appears twice.
type GroupingReport struct {
	Root       string             `json:"root"`
	TotalFiles int                `json:"total_files"`
	Groups     []AssociationGroup `json:"groups"`
}

// GroupCount returns the number of non-individual groups in the report.
func (r *GroupingReport) GroupCount() int {
	n := 0
	for _, g := range r.Groups {
		if g.Kind != GroupIndividual {
			n++
		}
	}
	return n
}
