package lsp

import (
	"testing"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func TestParseCapabilities(t *testing.T) {
	result := gjson.Parse(`{
		"capabilities": {
			"hoverProvider": true,
			"completionProvider": {"triggerCharacters": ["."]},
			"definitionProvider": false,
			"renameProvider": {"prepareProvider": true},
			"textDocumentSync": 1
		}
	}`)
	caps := ParseCapabilities(result)

	if !caps.Hover {
		t.Errorf("Hover = false")
	}
	if !caps.Completion {
		t.Errorf("Completion = false for object provider")
	}
	if caps.Definition {
		t.Errorf("Definition = true for explicit false")
	}
	if !caps.Rename {
		t.Errorf("Rename = false for object provider")
	}
	if !caps.Diagnostics {
		t.Errorf("Diagnostics = false with textDocumentSync present")
	}
	if caps.References || caps.Formatting || caps.CodeActions {
		t.Errorf("absent providers reported as supported: %+v", caps)
	}
}

func TestParseCompletionItemsArray(t *testing.T) {
	items := ParseCompletionItems(gjson.Parse(`[
		{"label":"Println","kind":3,"detail":"func(a ...any)"},
		{"label":"Printf","kind":3,"insertText":"Printf($0)"}
	]`))
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Label != "Println" || items[0].Kind != CompletionKindFunction {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].InsertText != "Printf($0)" {
		t.Errorf("items[1].InsertText = %q", items[1].InsertText)
	}
}

func TestParseCompletionItemsList(t *testing.T) {
	// CompletionList shape, built with sjson the way a server would nest it.
	payload, _ := sjson.Set(`{}`, "isIncomplete", false)
	payload, _ = sjson.Set(payload, "items.0.label", "append")
	payload, _ = sjson.Set(payload, "items.0.kind", 3)
	payload, _ = sjson.Set(payload, "items.0.documentation.kind", "markdown")
	payload, _ = sjson.Set(payload, "items.0.documentation.value", "appends elements")
	payload, _ = sjson.Set(payload, "items.0.textEdit.newText", "append")
	payload, _ = sjson.Set(payload, "items.0.textEdit.range.start.line", 4)

	items := ParseCompletionItems(gjson.Parse(payload))
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Documentation != "appends elements" {
		t.Errorf("Documentation = %q", items[0].Documentation)
	}
	if items[0].Edit == nil || items[0].Edit.NewText != "append" || items[0].Edit.Range.Start.Line != 4 {
		t.Errorf("Edit = %+v", items[0].Edit)
	}
}

func TestParseCompletionItemsNull(t *testing.T) {
	if items := ParseCompletionItems(gjson.Parse(`null`)); items != nil {
		t.Errorf("items = %v, want nil", items)
	}
}

func TestParseHoverShapes(t *testing.T) {
	tests := []struct {
		name string
		json string
		ok   bool
		want string
	}{
		{"plain string", `{"contents":"the docs"}`, true, "the docs"},
		{"markup content", `{"contents":{"kind":"markdown","value":"# doc"}}`, true, "# doc"},
		{"marked string array", `{"contents":[{"language":"go","value":"func F()"},"details"]}`, true, "func F()\n\ndetails"},
		{"null", `null`, false, ""},
		{"empty contents", `{"contents":""}`, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := ParseHover(gjson.Parse(tt.json))
			if ok != tt.ok {
				t.Fatalf("ParseHover() ok = %v, want %v", ok, tt.ok)
			}
			if ok && info.Contents != tt.want {
				t.Errorf("Contents = %q, want %q", info.Contents, tt.want)
			}
		})
	}
}

func TestParseHoverRange(t *testing.T) {
	info, ok := ParseHover(gjson.Parse(`{
		"contents":"x",
		"range":{"start":{"line":3,"character":0},"end":{"line":3,"character":5}}
	}`))
	if !ok || info.Range == nil {
		t.Fatalf("ParseHover() = %+v, %v", info, ok)
	}
	if info.Range.Start.Line != 3 || info.Range.End.Character != 5 {
		t.Errorf("Range = %+v", info.Range)
	}
}

func TestParseLocationsShapes(t *testing.T) {
	single := `{"uri":"file:///a.go","range":{"start":{"line":1,"character":0},"end":{"line":1,"character":3}}}`
	array := `[` + single + `,{"uri":"file:///b.go","range":{"start":{"line":9,"character":4},"end":{"line":9,"character":8}}}]`
	links := `[{"targetUri":"file:///c.go","targetRange":{"start":{"line":0,"character":0},"end":{"line":2,"character":0}},"targetSelectionRange":{"start":{"line":0,"character":5},"end":{"line":0,"character":8}}}]`

	if locs := ParseLocations(gjson.Parse(single)); len(locs) != 1 || locs[0].URI != "file:///a.go" {
		t.Errorf("single: %+v", locs)
	}
	if locs := ParseLocations(gjson.Parse(array)); len(locs) != 2 || locs[1].Range.Start.Line != 9 {
		t.Errorf("array: %+v", locs)
	}
	locs := ParseLocations(gjson.Parse(links))
	if len(locs) != 1 || locs[0].URI != "file:///c.go" {
		t.Fatalf("links: %+v", locs)
	}
	if locs[0].Range.Start.Character != 5 {
		t.Errorf("link range should prefer targetSelectionRange: %+v", locs[0].Range)
	}
	if locs := ParseLocations(gjson.Parse(`null`)); locs != nil {
		t.Errorf("null: %+v", locs)
	}
}

func TestParseDocumentSymbolsHierarchical(t *testing.T) {
	syms := ParseDocumentSymbols(gjson.Parse(`[
		{"name":"Server","kind":23,
		 "range":{"start":{"line":0,"character":0},"end":{"line":20,"character":0}},
		 "selectionRange":{"start":{"line":0,"character":5},"end":{"line":0,"character":11}},
		 "children":[
			{"name":"Start","kind":6,
			 "range":{"start":{"line":2,"character":0},"end":{"line":5,"character":0}},
			 "selectionRange":{"start":{"line":2,"character":5},"end":{"line":2,"character":10}}}
		 ]}
	]`))
	if len(syms) != 1 {
		t.Fatalf("symbols = %d, want 1", len(syms))
	}
	if syms[0].Name != "Server" || syms[0].Kind != SymbolKindStruct {
		t.Errorf("symbol = %+v", syms[0])
	}
	if len(syms[0].Children) != 1 || syms[0].Children[0].Name != "Start" {
		t.Errorf("children = %+v", syms[0].Children)
	}
}

func TestParseDocumentSymbolsFlat(t *testing.T) {
	syms := ParseDocumentSymbols(gjson.Parse(`[
		{"name":"main","kind":12,
		 "location":{"uri":"file:///a.go",
			"range":{"start":{"line":4,"character":0},"end":{"line":10,"character":0}}}}
	]`))
	if len(syms) != 1 {
		t.Fatalf("symbols = %d, want 1", len(syms))
	}
	s := syms[0]
	if s.Kind != SymbolKindFunction || s.Range.Start.Line != 4 {
		t.Errorf("symbol = %+v", s)
	}
	if s.SelectionRange != s.Range {
		t.Errorf("flat symbols should reuse the range for selection: %+v", s)
	}
}

func TestParseTextEdits(t *testing.T) {
	edits := ParseTextEdits(gjson.Parse(`[
		{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":0}},"newText":"import \"fmt\"\n"}
	]`))
	if len(edits) != 1 || edits[0].NewText != "import \"fmt\"\n" {
		t.Errorf("edits = %+v", edits)
	}
	if edits := ParseTextEdits(gjson.Parse(`null`)); edits != nil {
		t.Errorf("null edits = %+v", edits)
	}
}

func TestParseWorkspaceEditChanges(t *testing.T) {
	edit := ParseWorkspaceEdit(gjson.Parse(`{
		"changes": {
			"file:///a.go": [{"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":3}},"newText":"bar"}]
		}
	}`))
	if len(edit.Changes) != 1 || len(edit.Changes["file:///a.go"]) != 1 {
		t.Fatalf("edit = %+v", edit)
	}
	if edit.Changes["file:///a.go"][0].NewText != "bar" {
		t.Errorf("newText = %q", edit.Changes["file:///a.go"][0].NewText)
	}
}

func TestParseWorkspaceEditDocumentChanges(t *testing.T) {
	edit := ParseWorkspaceEdit(gjson.Parse(`{
		"documentChanges": [
			{"textDocument":{"uri":"file:///a.go","version":3},
			 "edits":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":3}},"newText":"baz"}]},
			{"kind":"create","uri":"file:///new.go"}
		]
	}`))
	if len(edit.Changes) != 1 {
		t.Fatalf("edit = %+v", edit)
	}
	if edit.Changes["file:///a.go"][0].NewText != "baz" {
		t.Errorf("newText = %q", edit.Changes["file:///a.go"][0].NewText)
	}
}

func TestParseCodeActions(t *testing.T) {
	actions := ParseCodeActions(gjson.Parse(`[
		{"title":"Remove unused import","kind":"quickfix",
		 "edit":{"changes":{"file:///a.go":[{"range":{"start":{"line":2,"character":0},"end":{"line":3,"character":0}},"newText":""}]}}},
		{"title":"Run linter","command":{"command":"lint.run","title":"Run linter"}}
	]`))
	if len(actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(actions))
	}
	if actions[0].Kind != "quickfix" || actions[0].Edit == nil {
		t.Errorf("actions[0] = %+v", actions[0])
	}
	if actions[1].Command != "lint.run" {
		t.Errorf("actions[1].Command = %q", actions[1].Command)
	}
}

func TestParseSignatureHelp(t *testing.T) {
	help, ok := ParseSignatureHelp(gjson.Parse(`{
		"signatures":[
			{"label":"func F(a int, b string)",
			 "parameters":[{"label":"a int"},{"label":"b string"}]}
		],
		"activeSignature":0,
		"activeParameter":1
	}`))
	if !ok {
		t.Fatalf("ParseSignatureHelp() ok = false")
	}
	if len(help.Signatures) != 1 || len(help.Signatures[0].Parameters) != 2 {
		t.Fatalf("help = %+v", help)
	}
	if help.ActiveParameter != 1 {
		t.Errorf("ActiveParameter = %d, want 1", help.ActiveParameter)
	}

	if _, ok := ParseSignatureHelp(gjson.Parse(`null`)); ok {
		t.Errorf("ParseSignatureHelp(null) ok = true")
	}
}

func TestParseDiagnosticsParams(t *testing.T) {
	uri, diags := ParseDiagnostics(gjson.Parse(`{
		"uri":"file:///x.py",
		"diagnostics":[
			{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},
			 "severity":2,"code":"F401","source":"ruff","message":"unused import"}
		]
	}`))
	if uri != "file:///x.py" {
		t.Fatalf("uri = %q", uri)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(diags))
	}
	d := diags[0]
	if d.Severity != SeverityWarning || d.Code != "F401" || d.Source != "ruff" {
		t.Errorf("diagnostic = %+v", d)
	}

	// Empty list clears, and must stay non-nil so callers can distinguish
	// "no diagnostics" from "never published".
	_, empty := ParseDiagnostics(gjson.Parse(`{"uri":"file:///x.py","diagnostics":[]}`))
	if empty == nil {
		t.Errorf("empty diagnostics = nil, want []")
	}
}
