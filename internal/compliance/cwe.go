package compliance

// CWE identifiers referenced by the rule tables.
const (
	CWE16   = "CWE-16"
	CWE79   = "CWE-79"
	CWE200  = "CWE-200"
	CWE319  = "CWE-319"
	CWE598  = "CWE-598"
	CWE614  = "CWE-614"
	CWE693  = "CWE-693"
	CWE942  = "CWE-942"
	CWE1021 = "CWE-1021"
	CWE1022 = "CWE-1022"
)

var cweNames = map[string]string{
	CWE16:   "Configuration",
	CWE79:   "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
	CWE200:  "Exposure of Sensitive Information to an Unauthorized Actor",
	CWE319:  "Cleartext Transmission of Sensitive Information",
	CWE598:  "Use of GET Request Method With Sensitive Query Strings",
	CWE614:  "Sensitive Cookie in HTTPS Session Without 'Secure' Attribute",
	CWE693:  "Protection Mechanism Failure",
	CWE942:  "Permissive Cross-domain Policy with Untrusted Domains",
	CWE1021: "Improper Restriction of Rendered UI Layers or Frames",
	CWE1022: "Use of Web Link to Untrusted Target with window.opener Access",
}

// CWEName returns the weakness title, or "" for identifiers outside the catalogue.
func CWEName(id string) string {
	return cweNames[id]
}
