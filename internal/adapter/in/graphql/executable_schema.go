package graphql

import (
	"bytes"
	"context"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
)

// FieldResolver resolves one root field. The result must be built from
// map[string]any, []any and JSON scalars so it can be projected on the
// selection set.
type FieldResolver func(ctx context.Context, args map[string]any) (any, error)

// Recorder is told how long each root field took and how it ended.
type Recorder interface {
	RecordGraphQLField(operation, field, code string, duration time.Duration)
}

type Config struct {
	Schema    *ast.Schema
	Resolvers *Resolver
	Recorder  Recorder
}

// ExecutableSchema serves the embedded schema to gqlgen's handler. Root
// fields are resolved one after another in document order.
type ExecutableSchema struct {
	schema    *ast.Schema
	queries   map[string]FieldResolver
	mutations map[string]FieldResolver
	rec       Recorder
}

var _ graphql.ExecutableSchema = (*ExecutableSchema)(nil)

func NewExecutableSchema(cfg Config) *ExecutableSchema {
	return &ExecutableSchema{
		schema:    cfg.Schema,
		queries:   cfg.Resolvers.Queries(),
		mutations: cfg.Resolvers.Mutations(),
		rec:       cfg.Recorder,
	}
}

func (e *ExecutableSchema) Schema() *ast.Schema {
	return e.schema
}

// Complexity leaves every field at gqlgen's default cost.
func (e *ExecutableSchema) Complexity(_ context.Context, _, _ string, _ int, _ map[string]any) (int, bool) {
	return 0, false
}

func (e *ExecutableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var (
		resolvers map[string]FieldResolver
		rootType  *ast.Definition
	)
	switch opCtx.Operation.Operation {
	case ast.Query:
		resolvers, rootType = e.queries, e.schema.Query
	case ast.Mutation:
		resolvers, rootType = e.mutations, e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "%s operations are not supported", opCtx.Operation.Operation))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		x := &execution{
			ctx:    ctx,
			opCtx:  opCtx,
			schema: e.schema,
			rec:    e.rec,
		}
		data := x.root(rootType, resolvers)

		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &graphql.Response{
			Data:   buf.Bytes(),
			Errors: x.errs,
		}
	}
}
