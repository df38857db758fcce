package gqlclient

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var ErrInvalidDocument = errors.New("invalid graphql document")

// Document is a parsed single-operation request document.
type Document struct {
	Query         string
	OperationName string
	Operation     ast.Operation
}

func Parse(src string) (Document, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "document", Input: src})
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(doc.Operations) != 1 {
		return Document{}, fmt.Errorf("%w: expected one operation, got %d", ErrInvalidDocument, len(doc.Operations))
	}

	op := doc.Operations[0]
	return Document{
		Query:         src,
		OperationName: op.Name,
		Operation:     op.Operation,
	}, nil
}

func MustParse(src string) Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}
