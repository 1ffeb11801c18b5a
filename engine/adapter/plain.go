package adapter

// PlainAdapter is the identity adapter for raw-text templates: the text
// projection is the container itself, there is no structure to reinject
// around, and the rendered text is the final output.
type PlainAdapter struct{}

func (PlainAdapter) Extract(raw []byte) (string, StructureMap, error) {
	return string(raw), nil, nil
}

func (PlainAdapter) Inject(_ string, processedText string, _ StructureMap, _ []ExpansionPlan) ([]byte, error) {
	return []byte(processedText), nil
}
