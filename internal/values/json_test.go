package values

import (
	"bytes"
	"strings"
	"testing"
)

func TestWrite_SortedKeysAndIndent(t *testing.T) {
	var buf bytes.Buffer
	vs := ValueSet{
		"zeta":  "last",
		"alpha": "first",
		"mid":   nil,
	}

	if err := Write(&buf, vs); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := `{
    "alpha": "first",
    "mid": null,
    "zeta": "last"
}
`
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWrite_TrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, ValueSet{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Errorf("output must end with a newline, got %q", buf.String())
	}
}

func TestMarshal_LargeFloatsStayDecimal(t *testing.T) {
	vs := ValueSet{"reads": 4.2e18}

	data, err := Marshal(vs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), "e+") || strings.Contains(string(data), "E+") {
		t.Errorf("scientific notation in output: %s", data)
	}
	if !strings.Contains(string(data), "4200000000000000000") {
		t.Errorf("expected full decimal form, got: %s", data)
	}
}

func TestMarshal_NestedListsAndMaps(t *testing.T) {
	vs := ValueSet{
		"samples": []any{"s1", "s2"},
		"extra":   map[string]any{"depth": 30.5},
	}

	data, err := Marshal(vs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"s1"`) || !strings.Contains(out, `"depth": 30.5`) {
		t.Errorf("unexpected output: %s", out)
	}
}
