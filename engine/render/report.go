package render

// TagStatus records one tag's resolution outcome for the render report.
type TagStatus struct {
	TagID   string
	OK      bool
	Message string
}

// ExpansionPlan records how one iteration region expanded: the primary
// tag it was keyed on, how many copies were emitted, and the per-copy
// tag-id -> substituted-text mapping for every iteration tag sharing the
// region. Container adapters consume it to duplicate structural regions
// such as table rows instead of lines.
type ExpansionPlan struct {
	TagID  string
	Length int
	Rows   []map[string]string
}

// Report is the structured metadata a render emits alongside its bytes.
type Report struct {
	Bytes      int
	Lines      int
	TagStatus  []TagStatus
	Warnings   []string
	Expansions []ExpansionPlan
}

func (r *Report) fail(tagID, message string) {
	r.TagStatus = append(r.TagStatus, TagStatus{TagID: tagID, OK: false, Message: message})
}

func (r *Report) ok(tagID string) {
	r.TagStatus = append(r.TagStatus, TagStatus{TagID: tagID, OK: true})
}

func (r *Report) warn(message string) {
	r.Warnings = append(r.Warnings, message)
}
