// Package extract projects one patent markup document onto the flat
// PatentRecord schema.  Every field is probed independently; a probe that
// finds nothing yields the sentinel.  Only a document that does not parse is
// an error.
package extract

import (
	"bytes"
	"io"

	"github.com/antchfx/xmlquery"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
	"github.com/turtacn/KeyIP-Ingest/pkg/errors"
)

var (
	probePublication  = mustProbe(".//fr-publication-data/fr-publication-reference")
	probeApplication  = mustProbe(".//fr-application-reference")
	probeTitle        = mustProbe(".//invention-title")
	probeAbstract     = mustProbe(".//abstract/p")
	probeAvailability = mustProbe(".//fr-date-availability")

	probeCountry   = mustProbe(".//country")
	probeDocNumber = mustProbe(".//doc-number")
	probeDate      = mustProbe(".//date")
	probeBopinum   = mustProbe(".//fr-bopinum")
	probeNature    = mustProbe(".//fr-nature")

	probeLastFee     = mustProbe(".//fr-last-fee-payement/date")
	probeNextFee     = mustProbe(".//fr-next-fee-payement/date")
	probeSearchCompl = mustProbe(".//fr-date-search-completed/date")

	probeClassifications = slotProbes(".//classification-ipcr[@sequence='%d']")
	probeClassText       = mustProbe(".//text")
)

// rootAttributes are the identity columns read from the document element.
var rootAttributes = []string{
	patent.FieldDocNumber,
	patent.FieldKind,
	patent.FieldCountry,
	patent.FieldStatus,
	patent.FieldFamilyID,
	patent.FieldDateProduced,
}

// Extractor turns markup documents into records.  It holds no state and is
// safe for concurrent use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses doc and projects it onto the record schema.  The returned
// record carries every column; `year` is left as the sentinel.  A parse
// failure returns an ErrCodeDocumentMalformed error and a nil record.
func (e *Extractor) Extract(doc []byte) (patent.Record, error) {
	return e.ExtractReader(bytes.NewReader(doc))
}

// ExtractReader is Extract over a stream.
func (e *Extractor) ExtractReader(r io.Reader) (patent.Record, error) {
	tree, err := xmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentMalformed, "cannot parse document")
	}
	root, err := documentElement(tree)
	if err != nil {
		return nil, err
	}

	rec := patent.NewRecord()
	extractIdentity(rec, root)
	extractReferences(rec, root)
	rec.Set(patent.FieldInventionTitle, probeTitle.text(root))
	extractParties(rec, root)
	extractClassifications(rec, root)
	rec.Set(patent.FieldAbstract, probeAbstract.text(root))
	extractCitations(rec, root)
	extractAvailability(rec, root)
	return rec, nil
}

// documentElement returns the single element child of the document node.
// No root element, or more than one, is malformed.
func documentElement(doc *xmlquery.Node) (*xmlquery.Node, error) {
	var root *xmlquery.Node
	if doc != nil {
		for n := doc.FirstChild; n != nil; n = n.NextSibling {
			if n.Type != xmlquery.ElementNode {
				continue
			}
			if root != nil {
				return nil, errors.New(errors.ErrCodeDocumentMalformed, "document has more than one root element").
					WithDetail("second=" + n.Data)
			}
			root = n
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeDocumentMalformed, "document has no root element")
	}
	return root, nil
}

func extractIdentity(rec patent.Record, root *xmlquery.Node) {
	for _, name := range rootAttributes {
		rec.Set(name, attr(root, name))
	}
}

func extractReferences(rec patent.Record, root *xmlquery.Node) {
	pub := probePublication.find(root)
	pubProbes := map[string]probe{
		"country":    probeCountry,
		"doc-number": probeDocNumber,
		"date":       probeDate,
		"bopinum":    probeBopinum,
		"nature":     probeNature,
	}
	for _, f := range patent.PublicationFields {
		rec.Set(patent.PrefixPublication+f, pubProbes[f].text(pub))
	}

	app := probeApplication.find(root)
	for _, f := range patent.ApplicationFields {
		rec.Set(patent.PrefixApplication+f, pubProbes[f].text(app))
	}
}

func extractClassifications(rec patent.Record, root *xmlquery.Node) {
	for i, p := range probeClassifications {
		rec.Set(patent.ClassificationColumn(i+1), probeClassText.text(p.find(root)))
	}
}

func extractAvailability(rec patent.Record, root *xmlquery.Node) {
	avail := probeAvailability.find(root)
	rec.Set(patent.FieldLastFeePayment, probeLastFee.text(avail))
	rec.Set(patent.FieldNextFeePayment, probeNextFee.text(avail))
	rec.Set(patent.FieldDateSearchCompleted, probeSearchCompl.text(avail))
}

//Personal.AI order the ending
