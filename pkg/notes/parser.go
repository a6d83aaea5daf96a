// Package notes extracts next-steps checklists from markdown process
// notes. Task list items anywhere in the document are collected in
// order of appearance.
package notes

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.TaskList),
)

// ParseChecklist parses a markdown document and returns its task list
// items. A document without any task list item is an error: the caller
// expected a next-steps note.
func ParseChecklist(source []byte) ([]model.ChecklistItem, error) {
	doc := md.Parser().Parse(text.NewReader(source))

	var items []model.ChecklistItem
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		checkbox, ok := n.(*east.TaskCheckBox)
		if !ok {
			return ast.WalkContinue, nil
		}

		items = append(items, model.ChecklistItem{
			Text: itemText(checkbox, source),
			Done: checkbox.IsChecked,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to walk markdown AST")
	}

	if len(items) == 0 {
		return nil, goerr.Wrap(types.ErrInvalidNote, "no task list items found")
	}

	return items, nil
}

// itemText collects the text of the list item the checkbox belongs to,
// skipping the checkbox node itself.
func itemText(checkbox *east.TaskCheckBox, source []byte) string {
	var sb strings.Builder
	for node := checkbox.NextSibling(); node != nil; node = node.NextSibling() {
		collectText(node, source, &sb)
	}

	return strings.TrimSpace(sb.String())
}

func collectText(n ast.Node, source []byte, sb *strings.Builder) {
	if txt, ok := n.(*ast.Text); ok {
		sb.Write(txt.Segment.Value(source))
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		collectText(child, source, sb)
	}
}
