package extract

import (
	"github.com/antchfx/xmlquery"

	"github.com/turtacn/KeyIP-Ingest/internal/domain/patent"
)

// partyElements maps each party kind to the element that declares it.
var partyElements = map[patent.PartyKind]string{
	patent.Applicant: "applicant",
	patent.Inventor:  "inventor",
	patent.Agent:     "agent",
	patent.Owner:     "fr-owner",
}

// partyProbes holds, per kind, one probe per slot addressed by the declared
// sequence attribute rather than document position.
var partyProbes = func() map[patent.PartyKind][patent.MaxSlots]probe {
	out := make(map[patent.PartyKind][patent.MaxSlots]probe, len(partyElements))
	for kind, el := range partyElements {
		out[kind] = slotProbes(".//" + el + "[@sequence='%d']")
	}
	return out
}()

var (
	probeOrgName   = mustProbe(".//orgname")
	probeLastName  = mustProbe(".//last-name")
	probeFirstName = mustProbe(".//first-name")
	probeAddress   = mustProbe(".//address")
	probeAddress1  = mustProbe(".//address-1")
	probeCity      = mustProbe(".//city")
	probePostcode  = mustProbe(".//postcode")
)

func extractParties(rec patent.Record, root *xmlquery.Node) {
	for _, kind := range patent.PartyKinds {
		for i, p := range partyProbes[kind] {
			extractParty(rec, kind, i+1, p.find(root))
		}
	}
}

// extractParty fills slot i of kind from node.  A nil node leaves the slot
// sentinel-filled.
func extractParty(rec patent.Record, kind patent.PartyKind, i int, node *xmlquery.Node) {
	if node == nil {
		return
	}
	col := func(field string) string { return patent.PartyColumn(kind, i, field) }

	switch kind {
	case patent.Applicant, patent.Agent:
		rec.Set(col(patent.PartyOrgName), partyName(node))
	default:
		rec.Set(col(patent.PartyLastName), probeLastName.text(node))
		rec.Set(col(patent.PartyFirstName), probeFirstName.text(node))
	}

	addr := probeAddress.find(node)
	rec.Set(col(patent.PartyAddress1), probeAddress1.text(addr))
	rec.Set(col(patent.PartyCity), probeCity.text(addr))
	rec.Set(col(patent.PartyPostcode), probePostcode.text(addr))
	rec.Set(col(patent.PartyCountry), probeCountry.text(addr))
}

// partyName prefers the organisation name and falls back to
// "last-name first-name" when both are present.
func partyName(node *xmlquery.Node) string {
	if org := probeOrgName.text(node); patent.IsAvailable(org) {
		return org
	}
	last, first := probeLastName.text(node), probeFirstName.text(node)
	if patent.IsAvailable(last) && patent.IsAvailable(first) {
		return last + " " + first
	}
	return patent.Sentinel
}

//Personal.AI order the ending
