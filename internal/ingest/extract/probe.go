package extract

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
)

// probe is a compiled descendant-or-self path query.
type probe struct {
	expr *xpath.Expr
}

func mustProbe(path string) probe {
	return probe{expr: xpath.MustCompile(path)}
}

// find returns the first node matched under top, or nil.
func (p probe) find(top *xmlquery.Node) *xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelector(top, p.expr)
}

// all returns every match under top in document order.
func (p probe) all(top *xmlquery.Node) []*xmlquery.Node {
	if top == nil {
		return nil
	}
	return xmlquery.QuerySelectorAll(top, p.expr)
}

// text returns the normalised text of the first match under top, or the
// sentinel when there is no match or the match holds no text.
func (p probe) text(top *xmlquery.Node) string {
	return nodeText(p.find(top))
}

// nodeText trims n's inner text and collapses internal whitespace runs.
func nodeText(n *xmlquery.Node) string {
	if n == nil {
		return patent.Sentinel
	}
	s := strings.Join(strings.Fields(n.InnerText()), " ")
	if s == "" {
		return patent.Sentinel
	}
	return s
}

// attr returns the value of a root attribute, or the sentinel.
func attr(n *xmlquery.Node, name string) string {
	if n == nil {
		return patent.Sentinel
	}
	v := strings.TrimSpace(n.SelectAttr(name))
	if v == "" {
		return patent.Sentinel
	}
	return v
}

// slotProbes compiles one probe per slot from a format taking the 1-based
// slot index.
func slotProbes(format string) [patent.MaxSlots]probe {
	var out [patent.MaxSlots]probe
	for i := range out {
		out[i] = mustProbe(fmt.Sprintf(format, i+1))
	}
	return out
}

//Personal.AI order the ending
