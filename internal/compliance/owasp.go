// Package compliance carries the classification catalogues findings are labelled
// with: the OWASP Top 10 (2021), the CWE entries the rules reference, and the
// control mappings for regional security frameworks.
package compliance

import "fmt"

// OWASP Top 10 (2021) category identifiers.
const (
	A01 = "A01:2021"
	A02 = "A02:2021"
	A03 = "A03:2021"
	A04 = "A04:2021"
	A05 = "A05:2021"
	A06 = "A06:2021"
	A07 = "A07:2021"
	A08 = "A08:2021"
	A09 = "A09:2021"
	A10 = "A10:2021"
)

// Category is one OWASP Top 10 entry.
type Category struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

var owaspTop10 = []Category{
	{ID: A01, Name: "Broken Access Control"},
	{ID: A02, Name: "Cryptographic Failures"},
	{ID: A03, Name: "Injection"},
	{ID: A04, Name: "Insecure Design"},
	{ID: A05, Name: "Security Misconfiguration"},
	{ID: A06, Name: "Vulnerable and Outdated Components"},
	{ID: A07, Name: "Identification and Authentication Failures"},
	{ID: A08, Name: "Software and Data Integrity Failures"},
	{ID: A09, Name: "Security Logging and Monitoring Failures"},
	{ID: A10, Name: "Server-Side Request Forgery"},
}

// OWASPTop10 returns the categories in ranking order.
func OWASPTop10() []Category {
	out := make([]Category, len(owaspTop10))
	copy(out, owaspTop10)
	return out
}

// LookupCategory finds a category by its identifier.
func LookupCategory(id string) (Category, bool) {
	for _, c := range owaspTop10 {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Label renders "A05:2021 Security Misconfiguration". Unknown ids are returned as is.
func Label(id string) string {
	if c, ok := LookupCategory(id); ok {
		return fmt.Sprintf("%s %s", c.ID, c.Name)
	}
	return id
}
