package employee_test

import (
	"fmt"
	"testing"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

func TestCandidateValid(t *testing.T) {
	t.Parallel()

	if !(domain.Candidate{Name: "Alice"}).Valid() {
		t.Fatal("expected candidate with name to be valid")
	}
	if (domain.Candidate{Name: "   ", WorkEmail: "a@x.com"}).Valid() {
		t.Fatal("expected blank name to be invalid")
	}
}

func TestNewEmployeeFromCandidateMapsEmptyToAbsent(t *testing.T) {
	t.Parallel()

	fields := domain.NewEmployeeFromCandidate(domain.Candidate{
		Name:      " Bob ",
		WorkEmail: "",
		JobTitle:  "Mgr",
	})

	if fields.Name != "Bob" {
		t.Fatalf("unexpected name: %q", fields.Name)
	}
	if fields.WorkEmail != nil {
		t.Fatalf("expected nil email, got %q", *fields.WorkEmail)
	}
	if fields.JobTitle == nil || *fields.JobTitle != "Mgr" {
		t.Fatalf("unexpected job title: %v", fields.JobTitle)
	}
	if fields.WorkPhone != nil {
		t.Fatalf("expected nil phone, got %q", *fields.WorkPhone)
	}
}

func TestNewEmployeeFromCandidateLowercasesEmail(t *testing.T) {
	t.Parallel()

	fields := domain.NewEmployeeFromCandidate(domain.Candidate{Name: "Alice", WorkEmail: " Alice@X.com "})
	if fields.WorkEmail == nil || *fields.WorkEmail != "alice@x.com" {
		t.Fatalf("unexpected email: %v", fields.WorkEmail)
	}
}

func TestSampleEmailsDedupesSortsAndCaps(t *testing.T) {
	t.Parallel()

	emails := []string{"c@x.com", "a@x.com", "c@x.com", "b@x.com"}
	got := domain.SampleEmails(emails)
	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	many := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		many = append(many, fmt.Sprintf("user%02d@x.com", i))
	}
	capped := domain.SampleEmails(many)
	if len(capped) != 20 {
		t.Fatalf("expected 20 samples, got %d", len(capped))
	}
	if capped[0] != "user00@x.com" || capped[19] != "user19@x.com" {
		t.Fatalf("unexpected sample bounds: %s..%s", capped[0], capped[19])
	}

	if domain.SampleEmails(nil) != nil {
		t.Fatal("expected nil sample for empty input")
	}
}

func TestImportTotalsAdd(t *testing.T) {
	t.Parallel()

	var totals domain.ImportTotals
	totals.Add(domain.ImportSummary{Created: 2, SkippedExisting: 1})
	totals.Add(domain.ImportSummary{Created: 1, SkippedInFile: 3})

	if totals.Created != 3 || totals.SkippedExisting != 1 || totals.SkippedInFile != 3 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
}
