package patent

import "fmt"

// Identity columns read from the document root attributes.
const (
	FieldDocNumber    = "doc-number"
	FieldKind         = "kind"
	FieldCountry      = "country"
	FieldStatus       = "status"
	FieldFamilyID     = "family-id"
	FieldDateProduced = "date-produced"
)

// Scalar columns probed from the document body.
const (
	FieldInventionTitle      = "invention-title"
	FieldAbstract            = "abstract"
	FieldLastFeePayment      = "last-fee-payement"
	FieldNextFeePayment      = "next-fee-payement"
	FieldDateSearchCompleted = "date-search-completed"

	// FieldYear is the ingestion partition, stamped from the year directory.
	FieldYear = "year"
)

// Prefixes of flattened sub-records.
const (
	PrefixPublication = "publication_"
	PrefixApplication = "application_"
)

// Publication and application sub-record columns.
var (
	PublicationFields = []string{"country", "doc-number", "date", "bopinum", "nature"}
	ApplicationFields = []string{"country", "doc-number", "date"}
)

// Frequently addressed flattened columns.
const (
	FieldPublicationDate      = PrefixPublication + "date"
	FieldPublicationDocNumber = PrefixPublication + "doc-number"
	FieldApplicationDate      = PrefixApplication + "date"
)

// PartyKind names one of the repeated party groups.
type PartyKind string

const (
	Applicant PartyKind = "applicant"
	Inventor  PartyKind = "inventor"
	Agent     PartyKind = "agent"
	Owner     PartyKind = "owner"
)

// PartyKinds lists the party groups in column order.
var PartyKinds = []PartyKind{Applicant, Inventor, Agent, Owner}

// Party slot fields.
const (
	PartyOrgName   = "orgname"
	PartyLastName  = "last-name"
	PartyFirstName = "first-name"
	PartyAddress1  = "address-1"
	PartyCity      = "city"
	PartyPostcode  = "postcode"
	PartyCountry   = "country"
)

// AddressFields are the address columns shared by every party kind.
var AddressFields = []string{PartyAddress1, PartyCity, PartyPostcode, PartyCountry}

// NameFields returns the name columns of a party kind: an organisation name
// for applicants and agents, last and first name for inventors and owners.
func (k PartyKind) NameFields() []string {
	switch k {
	case Applicant, Agent:
		return []string{PartyOrgName}
	default:
		return []string{PartyLastName, PartyFirstName}
	}
}

// SlotFields returns every column suffix of one party slot.
func (k PartyKind) SlotFields() []string {
	return append(k.NameFields(), AddressFields...)
}

// PartyColumn returns the column name of field in slot i (1-based).
func PartyColumn(kind PartyKind, i int, field string) string {
	return fmt.Sprintf("%s_%d_%s", kind, i, field)
}

// ClassificationColumn returns the column of classification slot i.
func ClassificationColumn(i int) string {
	return fmt.Sprintf("classification_%d_text", i)
}

// Citation slot fields.
const (
	CitationType      = "type"
	CitationText      = "text"
	CitationCountry   = "country"
	CitationDocNumber = "doc-number"
	CitationDate      = "date"
)

// Citation types.
const (
	CitationPatent    = "patcit"
	CitationNonPatent = "nplcit"
)

// CitationFields lists the columns of one citation slot.
var CitationFields = []string{CitationType, CitationText, CitationCountry, CitationDocNumber, CitationDate}

// CitationColumn returns the column name of field in citation slot i.
func CitationColumn(i int, field string) string {
	return fmt.Sprintf("citation_%d_%s", i, field)
}

var columns = buildColumns()

func buildColumns() []string {
	cols := []string{FieldDocNumber, FieldKind, FieldCountry, FieldStatus, FieldFamilyID, FieldDateProduced}
	for _, f := range PublicationFields {
		cols = append(cols, PrefixPublication+f)
	}
	for _, f := range ApplicationFields {
		cols = append(cols, PrefixApplication+f)
	}
	cols = append(cols, FieldInventionTitle)
	for _, kind := range PartyKinds {
		for i := 1; i <= MaxSlots; i++ {
			for _, f := range kind.SlotFields() {
				cols = append(cols, PartyColumn(kind, i, f))
			}
		}
	}
	for i := 1; i <= MaxSlots; i++ {
		cols = append(cols, ClassificationColumn(i))
	}
	cols = append(cols, FieldAbstract)
	for i := 1; i <= MaxSlots; i++ {
		for _, f := range CitationFields {
			cols = append(cols, CitationColumn(i, f))
		}
	}
	cols = append(cols, FieldLastFeePayment, FieldNextFeePayment, FieldDateSearchCompleted, FieldYear)
	return cols
}

// Columns returns the fixed, ordered column schema of a PatentRecord.  The
// returned slice is a copy.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// IsColumn reports whether name belongs to the schema.
func IsColumn(name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
