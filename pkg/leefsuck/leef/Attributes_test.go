// Copyright 2022 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package leef

import "testing"

const leefHeader = "LEEF:1.0|Microsoft|MSExchange|2013|Logon Failure|"

func TestAttributes_SpaceSeparated(t *testing.T) {
	m, err := ToMap(leefHeader+"src=127.0.0.1 dst=10.0.0.1 suser=Admin", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	expected := map[string]string{
		"src":   "127.0.0.1",
		"dst":   "10.0.0.1",
		"suser": "Admin",
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("expected %v=%v, got %v", k, v, m[k])
		}
	}
}

func TestAttributes_SpaceSeparatedValueWithSpaces(t *testing.T) {
	m, err := ToMap(leefHeader+"msg=user logged on src=127.0.0.1", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["msg"] != "user logged on" {
		t.Errorf("expected msg=user logged on, got %q", m["msg"])
	}
	if m["src"] != "127.0.0.1" {
		t.Errorf("expected src=127.0.0.1, got %q", m["src"])
	}
}

func TestAttributes_EscapedEqualsInsideValue(t *testing.T) {
	m, err := ToMap(`<134>LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|request=https://google.com&search\=rust`, false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["request"] != `https://google.com&search\=rust` {
		t.Errorf("expected the escaped = to stay inside the value, got %q", m["request"])
	}
}

func TestAttributes_TabSeparated(t *testing.T) {
	m, err := ToMap(leefHeader+"src=127.0.0.1\tdst=10.0.0.1\tsev=5", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["src"] != "127.0.0.1" || m["dst"] != "10.0.0.1" || m["sev"] != "5" {
		t.Errorf("unexpected attributes after tab split: %v", m)
	}
}

func TestAttributes_LiteralBackslashTSeparated(t *testing.T) {
	m, err := ToMap(leefHeader+`src=127.0.0.1\tdst=10.0.0.1`, false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["src"] != "127.0.0.1" || m["dst"] != "10.0.0.1" {
		t.Errorf("unexpected attributes after literal \\t split: %v", m)
	}
}

func TestAttributes_HexDeclaredDelimiter(t *testing.T) {
	m, err := ToMap("LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|x5e|src=127.0.0.1^dst=10.0.0.1^sev=5", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["src"] != "127.0.0.1" || m["dst"] != "10.0.0.1" || m["sev"] != "5" {
		t.Errorf("unexpected attributes after declared delimiter split: %v", m)
	}
	if m["delimiter"] != "x5e" {
		t.Errorf("expected delimiter=x5e, got %v", m["delimiter"])
	}
}

func TestAttributes_LiteralDeclaredDelimiter(t *testing.T) {
	m, err := ToMap("LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|#|src=127.0.0.1#dst=10.0.0.1", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["src"] != "127.0.0.1" || m["dst"] != "10.0.0.1" {
		t.Errorf("unexpected attributes after literal delimiter split: %v", m)
	}
}

func TestAttributes_LabelFolding(t *testing.T) {
	m, err := ToMap(leefHeader+"cs1Label=Reason Code cs1=404 src=127.0.0.1", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["ReasonCode"] != "404" {
		t.Errorf("expected ReasonCode=404, got %q", m["ReasonCode"])
	}
	if _, ok := m["cs1"]; ok {
		t.Error("cs1 should have been folded away")
	}
	if _, ok := m["cs1Label"]; ok {
		t.Error("cs1Label should have been folded away")
	}
	if m["src"] != "127.0.0.1" {
		t.Errorf("expected src=127.0.0.1, got %q", m["src"])
	}
}

func TestAttributes_LabelWithoutStemIsKept(t *testing.T) {
	m, err := ToMap(leefHeader+"cs1Label=ReasonCode src=127.0.0.1", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["cs1Label"] != "ReasonCode" {
		t.Errorf("expected cs1Label to survive without a matching stem, got %q", m["cs1Label"])
	}
}

func TestAttributes_LabelFoldingAfterDelimiterSplit(t *testing.T) {
	m, err := ToMap("LEEF:2.0|Microsoft|MSExchange|2013|Logon Failure|x5e|cs1Label=Reason Code^cs1=404", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["ReasonCode"] != "404" {
		t.Errorf("expected ReasonCode=404, got %q", m["ReasonCode"])
	}
}

func TestAttributes_LastWriteWinsOnDuplicateKeys(t *testing.T) {
	m, err := ToMap(leefHeader+"src=127.0.0.1 src=10.0.0.1", false)
	if err != nil {
		t.Fatalf("got error when converting: %v", err)
	}
	if m["src"] != "10.0.0.1" {
		t.Errorf("expected the last value to win, got %q", m["src"])
	}
}

func TestSplitUnescaped(t *testing.T) {
	got := splitUnescaped(`a=b\=c=d`, '=')
	expected := []string{"a", `b\=c`, "d"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v segments, got %v", len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("segment %v: expected %q, got %q", i, expected[i], got[i])
		}
	}
}

func TestSplitUnescaped_EscapedBackslashDoesNotEscapeSeparator(t *testing.T) {
	got := splitUnescaped(`a\\=b`, '=')
	if len(got) != 2 || got[0] != `a\\` || got[1] != "b" {
		t.Errorf(`expected a\\ and b, got %v`, got)
	}
}

func TestDecodeDelimiter(t *testing.T) {
	cases := map[string]string{
		"x5e":  "^",
		"0x5e": "^",
		"0X5E": "^",
		"x09":  "\t",
		"^":    "^",
		"#":    "#",
		"xyz":  "xyz",
	}
	for in, expected := range cases {
		if got := decodeDelimiter(in); got != expected {
			t.Errorf("decodeDelimiter(%q): expected %q, got %q", in, expected, got)
		}
	}
}
