package convert

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleLayout = `fields:
  - name: Invoice
    length: 6
    format: integer
  - name: Service date
    length: 8
    format: date
    input_format: DD/MM/YYYY
  - name: Amount
    length: 7
    format: decimal
    decimals: 2
  - name: Internal note
    skip: true
  - name: Label
    length: 10
    format: text
    truncate: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func intPtr(v int) *int { return &v }
