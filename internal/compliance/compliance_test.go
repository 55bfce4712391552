package compliance

import "testing"

func TestLabel(t *testing.T) {
	if got := Label(A05); got != "A05:2021 Security Misconfiguration" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := Label("A99:2030"); got != "A99:2030" {
		t.Fatalf("unknown ids should pass through, got %q", got)
	}
}

func TestOWASPTop10_Copy(t *testing.T) {
	cats := OWASPTop10()
	if len(cats) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(cats))
	}
	cats[0].Name = "changed"
	if c, _ := LookupCategory(A01); c.Name != "Broken Access Control" {
		t.Fatal("catalogue mutated through returned slice")
	}
}

func TestCWEName(t *testing.T) {
	if CWEName(CWE319) != "Cleartext Transmission of Sensitive Information" {
		t.Fatalf("unexpected name %q", CWEName(CWE319))
	}
	if CWEName("CWE-0") != "" {
		t.Fatal("expected empty name for unknown CWE")
	}
}

func TestMappingFor(t *testing.T) {
	m := MappingFor("HSTS_MISSING")
	if m == nil {
		t.Fatal("expected mapping for HSTS_MISSING")
	}
	if got := m.Frameworks["iso27001"]; len(got) != 1 || got[0] != "A.8.24" {
		t.Fatalf("unexpected iso27001 requirements %v", got)
	}

	m.Frameworks["iso27001"][0] = "mutated"
	if RequirementsFor("HSTS_MISSING", "iso27001")[0] != "A.8.24" {
		t.Fatal("mapping mutated through returned value")
	}

	if MappingFor("NOPE") != nil {
		t.Fatal("expected nil mapping for unknown rule")
	}
}

func TestRulesForFramework(t *testing.T) {
	rules := RulesForFramework("iso27001")
	if len(rules) != len(ruleMappings) {
		t.Fatalf("expected every rule mapped to iso27001, got %d of %d", len(rules), len(ruleMappings))
	}
	for i := 1; i < len(rules); i++ {
		if rules[i-1] > rules[i] {
			t.Fatalf("rules not sorted: %v", rules)
		}
	}
	if GetFramework("iso27001") == nil || GetFramework("unknown") != nil {
		t.Fatal("unexpected framework lookup result")
	}
}
