package graphql

import (
	"context"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type execution struct {
	ctx    context.Context
	opCtx  *graphql.OperationContext
	schema *ast.Schema
	rec    Recorder
	errs   gqlerror.List
}

// root resolves every root field. A failed non-null root field nulls the
// whole data object.
func (x *execution) root(typ *ast.Definition, resolvers map[string]FieldResolver) graphql.Marshaler {
	fields := graphql.CollectFields(x.opCtx, x.opCtx.Operation.SelectionSet, []string{typ.Name})
	out := graphql.NewFieldSet(fields)

	for i, f := range fields {
		path := ast.Path{ast.PathName(f.Alias)}

		switch f.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString(typ.Name)
			continue
		case "__schema", "__type":
			if x.opCtx.DisableIntrospection {
				x.fail(path, gqlerror.Errorf("introspection disabled"), CodeValidationFailed)
				out.Values[i] = graphql.Null
				if f.Definition.Type.NonNull {
					return graphql.Null
				}
				continue
			}
			out.Values[i] = x.value(f.Definition.Type, f.Selections, x.introspect(f))
			continue
		}

		resolve, ok := resolvers[f.Name]
		if !ok {
			x.fail(path, gqlerror.Errorf("field %q is not implemented", f.Name), CodeInternal)
			return graphql.Null
		}

		start := time.Now()
		v, err := resolve(x.ctx, f.ArgumentMap(x.opCtx.Variables))
		code := CodeOK
		if err != nil {
			code = errorCode(err)
			x.fail(path, resolverError(x.ctx, err), code)
		}
		if x.rec != nil {
			x.rec.RecordGraphQLField(x.opCtx.Operation.Name, f.Name, code, time.Since(start))
		}

		if err != nil {
			if f.Definition.Type.NonNull {
				return graphql.Null
			}
			out.Values[i] = graphql.Null
			continue
		}
		out.Values[i] = x.value(f.Definition.Type, f.Selections, v)
	}
	return out
}

func (x *execution) introspect(f graphql.CollectedField) any {
	if f.Name == "__schema" {
		return schemaIntrospection{s: x.schema}
	}
	name, _ := f.ArgumentMap(x.opCtx.Variables)["name"].(string)
	return namedTypeRef(x.schema, name)
}

// value completes v against its declared type.
func (x *execution) value(t *ast.Type, set ast.SelectionSet, v any) graphql.Marshaler {
	if v == nil {
		return graphql.Null
	}
	if t.Elem != nil {
		items, ok := v.([]any)
		if !ok {
			return graphql.Null
		}
		out := make(graphql.Array, 0, len(items))
		for _, it := range items {
			out = append(out, x.value(t.Elem, set, it))
		}
		return out
	}
	if len(set) == 0 {
		return scalar(v)
	}

	fields := graphql.CollectFields(x.opCtx, set, []string{t.NamedType})
	out := graphql.NewFieldSet(fields)
	for i, f := range fields {
		if f.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(t.NamedType)
			continue
		}

		var fv any
		switch obj := v.(type) {
		case map[string]any:
			fv = obj[f.Name]
		case introspected:
			fv = obj.field(f.Name, f.ArgumentMap(x.opCtx.Variables))
		}
		out.Values[i] = x.value(f.Definition.Type, f.Selections, fv)
	}
	return out
}

func scalar(v any) graphql.Marshaler {
	switch s := v.(type) {
	case string:
		return graphql.MarshalString(s)
	case bool:
		return graphql.MarshalBoolean(s)
	case int:
		return graphql.MarshalInt(s)
	case int64:
		return graphql.MarshalInt64(s)
	case float64:
		return graphql.MarshalFloat(s)
	default:
		return graphql.MarshalAny(v)
	}
}

func (x *execution) fail(path ast.Path, err *gqlerror.Error, code string) {
	err.Path = path
	if err.Extensions == nil {
		err.Extensions = map[string]any{}
	}
	err.Extensions["code"] = code
	x.errs = append(x.errs, err)
}
