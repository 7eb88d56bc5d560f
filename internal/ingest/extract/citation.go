package extract

import (
	"github.com/antchfx/xmlquery"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
)

var (
	probeCitation   = mustProbe(".//citation")
	probePatCit     = mustProbe(".//patcit")
	probeNplCit     = mustProbe(".//nplcit")
	probeDocumentID = mustProbe(".//document-id")
	probeText       = mustProbe(".//text")
)

func extractCitations(rec patent.Record, root *xmlquery.Node) {
	for i, node := range citationSlots(root) {
		extractCitation(rec, i+1, node)
	}
}

// citationSlots assigns citations to slots by position: slot i holds the
// first citation, in document order, that is the i-th citation among its
// siblings.  The declared sequence attribute plays no part.
func citationSlots(root *xmlquery.Node) [patent.MaxSlots]*xmlquery.Node {
	var slots [patent.MaxSlots]*xmlquery.Node
	for _, n := range probeCitation.all(root) {
		pos := siblingPosition(n)
		if pos <= patent.MaxSlots && slots[pos-1] == nil {
			slots[pos-1] = n
		}
	}
	return slots
}

// siblingPosition is n's 1-based index among the element siblings sharing
// its name.
func siblingPosition(n *xmlquery.Node) int {
	pos := 1
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == xmlquery.ElementNode && s.Data == n.Data {
			pos++
		}
	}
	return pos
}

// extractCitation types slot i as a patent or non-patent citation.  Only
// patent citations carry identity fields; a citation with neither sub-tree
// stays sentinel-filled, type included.
func extractCitation(rec patent.Record, i int, node *xmlquery.Node) {
	if node == nil {
		return
	}
	col := func(field string) string { return patent.CitationColumn(i, field) }

	if pat := probePatCit.find(node); pat != nil {
		rec.Set(col(patent.CitationType), patent.CitationPatent)
		rec.Set(col(patent.CitationText), probeText.text(pat))
		docID := probeDocumentID.find(pat)
		rec.Set(col(patent.CitationCountry), probeCountry.text(docID))
		rec.Set(col(patent.CitationDocNumber), probeDocNumber.text(docID))
		rec.Set(col(patent.CitationDate), probeDate.text(docID))
		return
	}
	if npl := probeNplCit.find(node); npl != nil {
		rec.Set(col(patent.CitationType), patent.CitationNonPatent)
		rec.Set(col(patent.CitationText), probeText.text(npl))
	}
}

//Personal.AI order the ending
