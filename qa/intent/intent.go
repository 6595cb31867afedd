// Package intent provides closed-set question intent classification.
package intent

// Intent is the category a question is classified into. It drives which
// collaborators are consulted and how their results are labeled.
type Intent string

const (
	IntentSales     Intent = "sales_inquiry"
	IntentHR        Intent = "hr_inquiry"
	IntentTechnical Intent = "technical_inquiry"
	IntentFinancial Intent = "financial_inquiry"
	IntentCustomer  Intent = "customer_inquiry"
	IntentGeneral   Intent = "general_inquiry"
)

// Classifier maps raw question text to an Intent. Implementations must never
// fail: when nothing matches they return IntentGeneral.
//
// The keyword matcher below is a stand-in for a real statistical classifier;
// keeping this interface lets one be substituted without touching the
// pipeline.
type Classifier interface {
	Classify(question string) Intent
}
