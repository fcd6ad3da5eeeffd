package deb

import "testing"

func TestValidateAcceptsComplete(t *testing.T) {
	f, _ := ParseControl("Package: hello\nVersion: 1.0\nArchitecture: amd64\nMaintainer: Jane\nDescription: hi\n")
	if err := Validate(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiresPackageFirst(t *testing.T) {
	f, _ := ParseControl("Version: 1.0\nPackage: hello\n")
	err, ok := Validate(f).(*ValidationError)
	if !ok || err.Kind != ErrDoesNotStartWithPackage {
		t.Fatalf("expected ErrDoesNotStartWithPackage, got %v", err)
	}
}

func TestValidateReportsMissingFields(t *testing.T) {
	f, _ := ParseControl("Package: hello\nVersion: 1.0\n")
	err, ok := Validate(f).(*ValidationError)
	if !ok || err.Kind != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if len(err.Fields) != 3 {
		t.Errorf("expected 3 missing fields, got %v", err.Fields)
	}
}

func TestValidateReportsForbiddenFields(t *testing.T) {
	f, _ := ParseControl("Package: hello\nVersion: 1.0\nArchitecture: amd64\nMaintainer: Jane\nDescription: hi\nFilename: evil\n")
	err, ok := Validate(f).(*ValidationError)
	if !ok || err.Kind != ErrForbiddenFields {
		t.Fatalf("expected ErrForbiddenFields, got %v", err)
	}
}

func TestValidateIsCaseInsensitive(t *testing.T) {
	f, _ := ParseControl("package: hello\nVERSION: 1.0\narchitecture: amd64\nmaintainer: Jane\ndescription: hi\n")
	if err := Validate(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
