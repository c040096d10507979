package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// calculateQueryDepth returns the deepest selection of any operation in the
// document. Fragments are expanded from the document's definitions.
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if def, ok := definition.(*ast.OperationDefinition); ok {
			depth := selectionSetDepth(def.SelectionSet, 1, fragments, map[string]bool{})
			maxDepth = max(maxDepth, depth)
		}
	}
	return maxDepth
}

// selectionSetDepth counts a level for every field carrying its own
// selection set. visiting guards against fragment cycles, which the
// validator rejects anyway.
func selectionSetDepth(set *ast.SelectionSet, current int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if set == nil {
		return current
	}

	maxDepth := current
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") || sel.SelectionSet == nil {
				continue
			}
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, current+1, fragments, visiting))

		case *ast.InlineFragment:
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, current, fragments, visiting))

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			maxDepth = max(maxDepth, selectionSetDepth(frag.SelectionSet, current, fragments, visiting))
			delete(visiting, name)
		}
	}
	return maxDepth
}

// ValidateQueryDepth parses query and checks it against maxDepth.
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}
