package convert

import (
	"reflect"
	"testing"
)

func TestSplitRecord(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim rune
		quote rune
		want  []string
	}{
		{"plain", "a,b,c", ',', '"', []string{"a", "b", "c"}},
		{"empty fields", ",,", ',', '"', []string{"", "", ""}},
		{"quoted delimiter", `a,"b,c",d`, ',', '"', []string{"a", "b,c", "d"}},
		{"doubled quote", `"say ""hi""",x`, ',', '"', []string{`say "hi"`, "x"}},
		{"quote mid field is literal", `ab"c,d`, ',', '"', []string{`ab"c`, "d"}},
		{"semicolon and single quote", `1;'x;y';3`, ';', '\'', []string{"1", "x;y", "3"}},
		{"quoting disabled", `"a","b"`, ',', 0, []string{`"a"`, `"b"`}},
		{"tab", "a\tb", '\t', '"', []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitRecord(tt.line, tt.delim, tt.quote)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitRecord_Unterminated(t *testing.T) {
	if _, err := splitRecord(`a,"b`, ',', '"'); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestDataLines(t *testing.T) {
	content := "header\r\n1\n\n2\n3\nfooter\n"

	lines, numbers := dataLines(content, 1, 1)
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if want := []int{2, 4, 5}; !reflect.DeepEqual(numbers, want) {
		t.Errorf("numbers = %v, want %v", numbers, want)
	}

	if lines, _ := dataLines(content, 3, 3); lines != nil {
		t.Errorf("expected no lines when skips exceed content, got %q", lines)
	}
}
