package schema

import (
	"regexp"
	"strings"
)

// Field is one of the fixed canonical columns every cleaned dataset is
// normalized to.
type Field string

const (
	FieldSMEID                Field = "sme_id"
	FieldIndustry             Field = "industry"
	FieldRegion               Field = "region"
	FieldLoanAmount           Field = "loan_amount"
	FieldLoanPurpose          Field = "loan_purpose"
	FieldEmployeeCount        Field = "employee_count"
	FieldProbabilityOfDefault Field = "probability_of_default"
	FieldNetMargin            Field = "net_margin"
	FieldRepaymentStatus      Field = "repayment_status"
	FieldLitigationStatus     Field = "litigation_status"
)

// fields lists every canonical field in declared order. The order matters:
// the mapper claims columns field by field, so overlapping synonym sets
// resolve in favor of earlier fields.
var fields = []Field{
	FieldSMEID,
	FieldIndustry,
	FieldRegion,
	FieldLoanAmount,
	FieldLoanPurpose,
	FieldEmployeeCount,
	FieldProbabilityOfDefault,
	FieldNetMargin,
	FieldRepaymentStatus,
	FieldLitigationStatus,
}

// Fields returns the canonical fields in declared order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// RequiredFields returns every canonical field a complete mapping must cover.
// Only sme_id is optional.
func RequiredFields() []Field {
	out := make([]Field, 0, len(fields)-1)
	for _, f := range fields {
		if f != FieldSMEID {
			out = append(out, f)
		}
	}
	return out
}

// CategoricalFields returns the canonical fields cleaned as categories.
func CategoricalFields() []Field {
	return []Field{FieldIndustry, FieldRegion, FieldLoanPurpose, FieldRepaymentStatus, FieldLitigationStatus}
}

// NumericFields returns the canonical fields cleaned as numbers.
func NumericFields() []Field {
	return []Field{FieldLoanAmount, FieldProbabilityOfDefault, FieldNetMargin, FieldEmployeeCount}
}

// synonyms maps each canonical field to the known alternate spellings of its
// raw column name, as normalized tokens.
var synonyms = map[Field][]string{
	FieldSMEID:                {"sme_id", "smeid", "id", "customer_id", "client_id", "account_id"},
	FieldIndustry:             {"industry", "sector", "business_industry"},
	FieldRegion:               {"region", "state", "location"},
	FieldLoanAmount:           {"loan_amount", "amount", "financing_amount", "loan_amt", "facility_amount"},
	FieldLoanPurpose:          {"loan_purpose", "purpose", "facility_purpose"},
	FieldEmployeeCount:        {"employees", "employee_count", "headcount", "no_of_employees", "staff_count"},
	FieldProbabilityOfDefault: {"pd", "probability_of_default", "default_probability", "risk_score", "prob_default"},
	FieldNetMargin:            {"net_margin", "margin", "profit_margin", "net_profit_margin"},
	FieldRepaymentStatus:      {"repayment", "repayment_status", "payment_status", "repayment_behavior"},
	FieldLitigationStatus:     {"litigation", "in_litigation", "legal", "legal_status", "legal_flag"},
}

// Synonyms returns the synonym tokens for a field. If the field has no synonym
// set, the canonical name itself is returned.
func Synonyms(f Field) []string {
	if s, ok := synonyms[f]; ok {
		return s
	}
	return []string{string(f)}
}

// HeaderVocabulary returns the union of every synonym token and every
// canonical field name, used by the ingestor to score candidate header rows.
func HeaderVocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, f := range fields {
		vocab[NormalizeToken(string(f))] = struct{}{}
		for _, s := range synonyms[f] {
			vocab[s] = struct{}{}
		}
	}
	return vocab
}

var (
	tokenRe    = regexp.MustCompile(`[^a-z0-9_]+`)
	collapseRe = regexp.MustCompile(`_+`)
)

// NormalizeToken reduces a raw column name to a comparable token: lowercase,
// non-alphanumeric runs become a single underscore, edges trimmed.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = tokenRe.ReplaceAllString(s, "_")
	s = collapseRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
