package adapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// htmlStructure is the StructureMap an HTMLAdapter hands back: the parsed
// DOM plus the ordered list of text nodes the projection was assembled
// from, so Inject can write rendered segments back to the right nodes.
type htmlStructure struct {
	doc       *html.Node
	textNodes []*html.Node
}

// HTMLAdapter extracts an HTML document's text nodes as the projection
// the core engine tokenizes and renders, then reinjects the rendered
// result through bluemonday's UGC sanitizing policy, since rendered tag
// values may carry user-supplied markup.
type HTMLAdapter struct {
	// Policy is the sanitization policy applied on reinjection; nil uses
	// bluemonday.UGCPolicy().
	Policy *bluemonday.Policy
}

// NewHTMLAdapter builds an HTMLAdapter with the default UGC sanitization
// policy.
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{Policy: bluemonday.UGCPolicy()}
}

// textNodeSep joins extracted text-node contents into one projection and
// splits the rendered result back apart on reinjection; a NUL byte is used
// rather than whitespace since legitimate document text (and rendered tag
// output) may itself contain spaces.
const textNodeSep = "\x00"

func (a *HTMLAdapter) Extract(raw []byte) (string, StructureMap, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("parsing HTML container: %w", err)
	}

	var textNodes []*html.Node
	var segments []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			textNodes = append(textNodes, n)
			segments = append(segments, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	projection := strings.Join(segments, textNodeSep)
	return projection, &htmlStructure{doc: doc, textNodes: textNodes}, nil
}

func (a *HTMLAdapter) Inject(_ string, processedText string, structure StructureMap, _ []ExpansionPlan) ([]byte, error) {
	s, ok := structure.(*htmlStructure)
	if !ok {
		return nil, fmt.Errorf("HTMLAdapter.Inject: structure was not produced by HTMLAdapter.Extract")
	}

	policy := a.Policy
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}

	segments := strings.Split(processedText, textNodeSep)
	if len(segments) != len(s.textNodes) {
		return nil, fmt.Errorf("HTMLAdapter.Inject: rendered segment count %d does not match extracted text node count %d; duplicate rows before reinjection via an ExpansionPlan", len(segments), len(s.textNodes))
	}
	for i, node := range s.textNodes {
		node.Data = policy.Sanitize(segments[i])
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, s.doc); err != nil {
		return nil, fmt.Errorf("serializing HTML container: %w", err)
	}
	return buf.Bytes(), nil
}
