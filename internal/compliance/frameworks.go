package compliance

import (
	"slices"
	"sort"
)

// Framework represents a compliance or regulatory framework
type Framework struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Region string `json:"region" yaml:"region"`
}

// Mapping ties one audit rule to framework requirements.
type Mapping struct {
	RuleID     string              `json:"ruleId" yaml:"ruleId"`
	Frameworks map[string][]string `json:"frameworks" yaml:"frameworks"` // framework ID -> requirement IDs
}

var frameworks = []Framework{
	{ID: "iso27001", Name: "ISO/IEC 27001:2022", Region: "Global"},
	{ID: "jisq27001", Name: "JIS Q 27001", Region: "Japan"},
	{ID: "fisc", Name: "FISC Security Guidelines", Region: "Japan"},
	{ID: "pdpa", Name: "PDPA (Personal Data Protection Act)", Region: "Singapore"},
	{ID: "mtcs", Name: "MTCS SS 584", Region: "Singapore"},
	{ID: "kisms", Name: "K-ISMS (Korea ISMS)", Region: "Korea"},
	{ID: "ismsp", Name: "ISMS-P", Region: "Korea"},
}

// Transport protections share one set of requirements.
var transportControls = map[string][]string{
	"iso27001":  {"A.8.24"},
	"jisq27001": {"A.8.24"},
	"pdpa":      {"Protection Obligation 24"},
	"mtcs":      {"CC-02"},
	"kisms":     {"2.8.1"},
	"fisc":      {"Network Security 3-1"},
}

var browserHardeningControls = map[string][]string{
	"iso27001":  {"A.8.16", "A.8.23"},
	"jisq27001": {"A.8.16"},
	"kisms":     {"2.7.3"},
	"ismsp":     {"2.7.3"},
}

var secureDevelopmentControls = map[string][]string{
	"iso27001":  {"A.8.28"},
	"jisq27001": {"A.8.28"},
	"kisms":     {"2.8.6"},
	"fisc":      {"System Development 4-3"},
}

var dataProtectionControls = map[string][]string{
	"iso27001":  {"A.8.12"},
	"jisq27001": {"A.8.12"},
	"pdpa":      {"Protection Obligation 24"},
	"ismsp":     {"3.2.3"},
}

var ruleMappings = map[string]map[string][]string{
	"HTTP_IN_USE":                transportControls,
	"HSTS_MISSING":               transportControls,
	"MIXED_CONTENT":              transportControls,
	"FORM_HTTP_ACTION":           transportControls,
	"COOKIE_FLAGS_MISSING":       transportControls,
	"CSP_MISSING":                browserHardeningControls,
	"CSP_UNSAFE":                 browserHardeningControls,
	"CLICKJACKING_RISK":          browserHardeningControls,
	"NOSNIFF_MISSING":            browserHardeningControls,
	"PERMISSIONS_POLICY_MISSING": browserHardeningControls,
	"XSS_PROTECTION_DEPRECATED":  browserHardeningControls,
	"CORS_WILDCARD":              browserHardeningControls,
	"DOM_XSS_INLINE":             secureDevelopmentControls,
	"INLINE_HANDLER":             secureDevelopmentControls,
	"TABNABBING":                 secureDevelopmentControls,
	"PW_AUTOCOMPLETE":            secureDevelopmentControls,
	"REFERRER_POLICY_MISSING":    dataProtectionControls,
	"SERVER_DISCLOSURE":          dataProtectionControls,
	"PASSWORD_VIA_GET":           dataProtectionControls,
	"TOKEN_IN_URL":               dataProtectionControls,
}

// SupportedFrameworks returns all compliance frameworks rules are mapped to.
func SupportedFrameworks() []Framework {
	return slices.Clone(frameworks)
}

// GetFramework returns a specific framework by ID
func GetFramework(id string) *Framework {
	for _, fw := range frameworks {
		if fw.ID == id {
			return &fw
		}
	}
	return nil
}

// MappingFor returns the framework requirements satisfied by fixing a rule.
func MappingFor(ruleID string) *Mapping {
	controls, ok := ruleMappings[ruleID]
	if !ok {
		return nil
	}
	m := &Mapping{RuleID: ruleID, Frameworks: make(map[string][]string, len(controls))}
	for fw, reqs := range controls {
		m.Frameworks[fw] = slices.Clone(reqs)
	}
	return m
}

// RequirementsFor returns the requirement IDs of one framework for a rule.
func RequirementsFor(ruleID, frameworkID string) []string {
	return slices.Clone(ruleMappings[ruleID][frameworkID])
}

// RulesForFramework returns the sorted rule IDs mapped to a framework.
func RulesForFramework(frameworkID string) []string {
	var rules []string
	for ruleID, controls := range ruleMappings {
		if _, ok := controls[frameworkID]; ok {
			rules = append(rules, ruleID)
		}
	}
	sort.Strings(rules)
	return rules
}
