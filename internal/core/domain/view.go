package domain

// View is what evaluation reads: a project snapshot and the timing resolved from it.
type View struct {
	Snapshot *Snapshot
	Timing   *Timing
}

// Revision returns the project revision the view was taken at.
func (v *View) Revision() uint64 {
	return v.Snapshot.Revision()
}
