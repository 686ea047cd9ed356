package errors

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/fedesilva/minnieml/internal/ast"
)

func TestReportJSONShape(t *testing.T) {
	r := New("type-checking", TYP001, "argument of type String where Int is expected").
		WithSpan(ast.Loc{Start: ast.SrcPoint{Line: 4, Col: 9, Offset: 120}, End: ast.SrcPoint{Line: 4, Col: 20, Offset: 131}}).
		WithData("name", "inc")

	out, err := r.ToJSON(true)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded["schema"] != SchemaV1 {
		t.Errorf("schema %v, want %s", decoded["schema"], SchemaV1)
	}
	if decoded["code"] != TYP001 || decoded["phase"] != "type-checking" {
		t.Errorf("code/phase wrong: %v", decoded)
	}
	if decoded["span"] == nil {
		t.Error("span missing")
	}
}

func TestSynthOriginHasNoSpan(t *testing.T) {
	r := New("ownership-analysis", OWN001, "x used after move").WithSpan(ast.Synth{})
	if r.Span != nil {
		t.Error("synthetic origin must not produce a span")
	}
}

func TestReportSurvivesErrorWrapping(t *testing.T) {
	r := New("reference-resolution", SEM002, "undefined reference nope")
	err := fmt.Errorf("while checking: %w", WrapReport(r))

	got, ok := AsReport(err)
	if !ok {
		t.Fatal("report lost through wrapping")
	}
	if got.Code != SEM002 {
		t.Errorf("code %s, want %s", got.Code, SEM002)
	}
	var re *ReportError
	if !goerrors.As(err, &re) {
		t.Error("ReportError not found in chain")
	}
}

func TestRegistryCoversEveryBand(t *testing.T) {
	bands := map[string]bool{}
	for code, info := range Registry {
		if info.Code != code {
			t.Errorf("%s: registry key and code disagree", code)
		}
		bands[info.Band] = true
	}
	for _, band := range []string{"parser", "structural", "semantic"} {
		if !bands[band] {
			t.Errorf("no codes registered for the %s band", band)
		}
	}
	if !IsParserOrigin(PRS001) || IsParserOrigin(TYP001) {
		t.Error("IsParserOrigin misclassifies")
	}
	if !IsStructural(SEM002) || IsStructural(OWN001) {
		t.Error("IsStructural misclassifies")
	}
}
