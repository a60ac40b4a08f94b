package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"function", KwFunction, true},
		{"NA_character_", KwNACharacter, true},
		{"TRUE", KwTrue, true},
		{"True", Invalid, false},
		{"repeat", KwRepeat, true},
	}
	for _, tc := range cases {
		got, ok := LookupKeyword(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("LookupKeyword(%q) = %v, %v", tc.in, got, ok)
		}
	}
}

func TestKindDescriptions(t *testing.T) {
	if Ident.String() != "symbol" || StringLit.String() != "string constant" || LeftAssign.String() != "assignment" {
		t.Fatalf("unexpected descriptions: %s %s %s", Ident, StringLit, LeftAssign)
	}
	if !KwNull.IsConstant() || Ident.IsConstant() {
		t.Fatalf("IsConstant misclassified")
	}
}
