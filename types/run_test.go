package types //nolint:revive // types is a valid package name

import "testing"

func TestNormalizeApplicationID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"se", "SE", false},
		{"A9", "A9", false},
		{"99", "99", false},
		{"A", "", true},
		{"ABC", "", true},
		{"A-", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeApplicationID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && KindOf(err) != KindInvalidApplicationID {
				t.Errorf("kind = %q", KindOf(err))
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeBillingType(t *testing.T) {
	for _, in := range []string{"h", "H", "e", "E", " "} {
		if _, err := NormalizeBillingType(in); err != nil {
			t.Errorf("NormalizeBillingType(%q) unexpected error: %v", in, err)
		}
	}
	for _, in := range []string{"", "X", "HE", "  "} {
		_, err := NormalizeBillingType(in)
		if !IsKind(err, KindInvalidBillingType) {
			t.Errorf("NormalizeBillingType(%q) = %v, want invalid billing type", in, err)
		}
	}
}

func TestNormalizeFileVersion(t *testing.T) {
	got, err := NormalizeFileVersion("v1.11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "V1.11" {
		t.Errorf("got %q, want V1.11", got)
	}

	_, err = NormalizeFileVersion("V1.12")
	if !IsKind(err, KindInvalidFileVersionArg) {
		t.Errorf("expected invalid file version argument, got %v", err)
	}
}
