package manifest

import "testing"

func TestValidateAcceptsWellFormed(t *testing.T) {
	res, err := Validate([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid, got issues: %+v", res.Issues)
	}
}

func TestValidateReportsMissingRequired(t *testing.T) {
	res, err := Validate([]byte("description: no name or repository\n"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestValidateReportsBadDependencyValue(t *testing.T) {
	body := `name: widgets
repository:
  url: acme/widgets
dependencies:
  acme/gadgets: 42
`
	res, err := Validate([]byte(body))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("expected invalid result for non-string dependency range")
	}
}

func TestValidateRejectsUnknownField(t *testing.T) {
	body := `name: widgets
repository:
  url: acme/widgets
budget: 9000
`
	res, err := Validate([]byte(body))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("expected invalid result for unknown top-level field")
	}
}
