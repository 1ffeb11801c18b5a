// Package adapter defines the container adapter boundary: extracting a
// text projection from a concrete document container and reinjecting
// processed text plus duplicated regions. Two illustrative
// implementations are provided, PlainAdapter and HTMLAdapter; richer
// containers (DOCX, XLSX, ODT) are supplied by hosts.
package adapter

import "docweave/engine/render"

// StructureMap is opaque host-specific bookkeeping an adapter needs to
// reinject processed text back into its original container (e.g. XML
// part offsets, a DOM node list). The core never inspects it.
type StructureMap any

// ExpansionPlan is the renderer's per-iteration-region record of how many
// copies to emit and which values to substitute per copy: the core
// produces these in its render report (render.Report.Expansions),
// container adapters consume them to duplicate structural regions (e.g.
// table rows) instead of lines.
type ExpansionPlan = render.ExpansionPlan

// Adapter extracts a text projection from a concrete document container
// and reinjects processed text and duplicated regions back into it.
type Adapter interface {
	// Extract returns the text the core engine should tokenize/render,
	// plus opaque structure bookkeeping needed to reinject it.
	Extract(raw []byte) (textProjection string, structure StructureMap, err error)
	// Inject reinserts processedText (the core's rendered output) into
	// the original container, honoring any row-duplication an
	// ExpansionPlan calls for, and returns the final container bytes.
	Inject(textProjection, processedText string, structure StructureMap, plans []ExpansionPlan) ([]byte, error)
}
