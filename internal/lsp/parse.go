package lsp

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Result payloads vary by server: many LSP responses are union types
// (single value | array | structured object). These parsers accept every
// shape the protocol allows and normalize to the editor-facing types.

// ParseCapabilities reads the capabilities object from an initialize result.
// Provider fields count as supported when present and not false.
func ParseCapabilities(result gjson.Result) Capabilities {
	caps := result.Get("capabilities")
	provides := func(field string) bool {
		v := caps.Get(field)
		if !v.Exists() {
			return false
		}
		return v.Type != gjson.False
	}
	return Capabilities{
		Completion:       provides("completionProvider"),
		Hover:            provides("hoverProvider"),
		Definition:       provides("definitionProvider"),
		References:       provides("referencesProvider"),
		DocumentSymbols:  provides("documentSymbolProvider"),
		WorkspaceSymbols: provides("workspaceSymbolProvider"),
		Formatting:       provides("documentFormattingProvider"),
		Rename:           provides("renameProvider"),
		CodeActions:      provides("codeActionProvider"),
		SignatureHelp:    provides("signatureHelpProvider"),
		Diagnostics:      provides("textDocumentSync") || provides("diagnosticProvider"),
	}
}

func parsePosition(v gjson.Result) Position {
	return Position{
		Line:      int(v.Get("line").Int()),
		Character: int(v.Get("character").Int()),
	}
}

func parseRange(v gjson.Result) Range {
	return Range{
		Start: parsePosition(v.Get("start")),
		End:   parsePosition(v.Get("end")),
	}
}

func parseTextEdit(v gjson.Result) TextEdit {
	return TextEdit{
		Range:   parseRange(v.Get("range")),
		NewText: v.Get("newText").String(),
	}
}

// ParseCompletionItems accepts both CompletionItem[] and CompletionList.
func ParseCompletionItems(result gjson.Result) []CompletionItem {
	arr := result
	if !arr.IsArray() {
		arr = result.Get("items")
	}
	if !arr.IsArray() {
		return nil
	}

	var items []CompletionItem
	arr.ForEach(func(_, v gjson.Result) bool {
		item := CompletionItem{
			Label:      v.Get("label").String(),
			Kind:       CompletionItemKind(v.Get("kind").Int()),
			Detail:     v.Get("detail").String(),
			InsertText: v.Get("insertText").String(),
			SortText:   v.Get("sortText").String(),
			FilterText: v.Get("filterText").String(),
		}
		item.Documentation = markupText(v.Get("documentation"))
		if te := v.Get("textEdit"); te.Exists() {
			edit := parseTextEdit(te)
			item.Edit = &edit
		}
		items = append(items, item)
		return true
	})
	return items
}

// markupText flattens string | MarkedString | MarkupContent | arrays of
// those into plain text.
func markupText(v gjson.Result) string {
	switch {
	case v.Type == gjson.String:
		return v.String()
	case v.IsArray():
		var parts []string
		v.ForEach(func(_, e gjson.Result) bool {
			if s := markupText(e); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		return strings.Join(parts, "\n\n")
	case v.IsObject():
		// MarkupContent{kind, value} or MarkedString{language, value}
		return v.Get("value").String()
	default:
		return ""
	}
}

// ParseHover normalizes a hover result. Returns ok=false for null or
// empty hovers.
func ParseHover(result gjson.Result) (HoverInfo, bool) {
	contents := markupText(result.Get("contents"))
	if contents == "" {
		return HoverInfo{}, false
	}
	info := HoverInfo{Contents: contents}
	if r := result.Get("range"); r.Exists() {
		rng := parseRange(r)
		info.Range = &rng
	}
	return info, true
}

func parseLocation(v gjson.Result) (Location, bool) {
	if uri := v.Get("uri"); uri.Exists() {
		return Location{URI: uri.String(), Range: parseRange(v.Get("range"))}, true
	}
	// LocationLink
	if target := v.Get("targetUri"); target.Exists() {
		rng := v.Get("targetSelectionRange")
		if !rng.Exists() {
			rng = v.Get("targetRange")
		}
		return Location{URI: target.String(), Range: parseRange(rng)}, true
	}
	return Location{}, false
}

// ParseLocations accepts Location | Location[] | LocationLink[].
func ParseLocations(result gjson.Result) []Location {
	if result.IsArray() {
		var locs []Location
		result.ForEach(func(_, v gjson.Result) bool {
			if loc, ok := parseLocation(v); ok {
				locs = append(locs, loc)
			}
			return true
		})
		return locs
	}
	if loc, ok := parseLocation(result); ok {
		return []Location{loc}
	}
	return nil
}

func parseDocumentSymbol(v gjson.Result) DocumentSymbol {
	sym := DocumentSymbol{
		Name:           v.Get("name").String(),
		Kind:           SymbolKind(v.Get("kind").Int()),
		Range:          parseRange(v.Get("range")),
		SelectionRange: parseRange(v.Get("selectionRange")),
	}
	v.Get("children").ForEach(func(_, c gjson.Result) bool {
		sym.Children = append(sym.Children, parseDocumentSymbol(c))
		return true
	})
	return sym
}

// ParseDocumentSymbols accepts both the hierarchical DocumentSymbol[]
// shape and the flat SymbolInformation[] shape (which nests the range
// under location).
func ParseDocumentSymbols(result gjson.Result) []DocumentSymbol {
	if !result.IsArray() {
		return nil
	}
	var syms []DocumentSymbol
	result.ForEach(func(_, v gjson.Result) bool {
		if loc := v.Get("location"); loc.Exists() {
			rng := parseRange(loc.Get("range"))
			syms = append(syms, DocumentSymbol{
				Name:           v.Get("name").String(),
				Kind:           SymbolKind(v.Get("kind").Int()),
				Range:          rng,
				SelectionRange: rng,
			})
		} else {
			syms = append(syms, parseDocumentSymbol(v))
		}
		return true
	})
	return syms
}

// ParseTextEdits reads a TextEdit[] result (formatting).
func ParseTextEdits(result gjson.Result) []TextEdit {
	if !result.IsArray() {
		return nil
	}
	var edits []TextEdit
	result.ForEach(func(_, v gjson.Result) bool {
		edits = append(edits, parseTextEdit(v))
		return true
	})
	return edits
}

// ParseWorkspaceEdit reads both the changes map and the documentChanges
// array forms of a workspace edit (rename).
func ParseWorkspaceEdit(result gjson.Result) WorkspaceEdit {
	edit := WorkspaceEdit{Changes: make(map[string][]TextEdit)}

	result.Get("changes").ForEach(func(uri, edits gjson.Result) bool {
		edit.Changes[uri.String()] = ParseTextEdits(edits)
		return true
	})

	result.Get("documentChanges").ForEach(func(_, change gjson.Result) bool {
		uri := change.Get("textDocument.uri").String()
		if uri == "" {
			// Create/rename/delete file operations are not applied.
			return true
		}
		edit.Changes[uri] = append(edit.Changes[uri], ParseTextEdits(change.Get("edits"))...)
		return true
	})

	return edit
}

// ParseDiagnostics reads textDocument/publishDiagnostics params.
func ParseDiagnostics(params gjson.Result) (string, []Diagnostic) {
	uri := params.Get("uri").String()
	diags := []Diagnostic{}
	params.Get("diagnostics").ForEach(func(_, v gjson.Result) bool {
		diags = append(diags, Diagnostic{
			Range:    parseRange(v.Get("range")),
			Severity: DiagnosticSeverity(v.Get("severity").Int()),
			Code:     v.Get("code").String(),
			Source:   v.Get("source").String(),
			Message:  v.Get("message").String(),
		})
		return true
	})
	return uri, diags
}

// ParseCodeActions accepts (Command | CodeAction)[].
func ParseCodeActions(result gjson.Result) []CodeAction {
	if !result.IsArray() {
		return nil
	}
	var actions []CodeAction
	result.ForEach(func(_, v gjson.Result) bool {
		action := CodeAction{
			Title: v.Get("title").String(),
			Kind:  v.Get("kind").String(),
		}
		if cmd := v.Get("command"); cmd.Exists() {
			if cmd.Type == gjson.String {
				action.Command = cmd.String()
			} else {
				action.Command = cmd.Get("command").String()
			}
		}
		if e := v.Get("edit"); e.Exists() {
			we := ParseWorkspaceEdit(e)
			action.Edit = &we
		}
		actions = append(actions, action)
		return true
	})
	return actions
}

// ParseSignatureHelp reads a signature help result. Returns ok=false when
// no signatures are available.
func ParseSignatureHelp(result gjson.Result) (SignatureHelp, bool) {
	sigs := result.Get("signatures")
	if !sigs.IsArray() || len(sigs.Array()) == 0 {
		return SignatureHelp{}, false
	}
	help := SignatureHelp{
		ActiveSignature: int(result.Get("activeSignature").Int()),
		ActiveParameter: int(result.Get("activeParameter").Int()),
	}
	sigs.ForEach(func(_, v gjson.Result) bool {
		sig := SignatureInformation{
			Label:         v.Get("label").String(),
			Documentation: markupText(v.Get("documentation")),
		}
		v.Get("parameters").ForEach(func(_, p gjson.Result) bool {
			sig.Parameters = append(sig.Parameters, ParameterInformation{
				Label:         p.Get("label").String(),
				Documentation: markupText(p.Get("documentation")),
			})
			return true
		})
		help.Signatures = append(help.Signatures, sig)
		return true
	})
	return help, true
}
