package graphql

import (
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// introspected is implemented by the __schema and __type views. They are
// projected field by field like any other object value.
type introspected interface {
	field(name string, args map[string]any) any
}

type schemaIntrospection struct {
	s *ast.Schema
}

func (v schemaIntrospection) field(name string, _ map[string]any) any {
	switch name {
	case "description":
		return optional(v.s.Description)
	case "types":
		names := make([]string, 0, len(v.s.Types))
		for n := range v.s.Types {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]any, 0, len(names))
		for _, n := range names {
			out = append(out, typeRef{s: v.s, def: v.s.Types[n]})
		}
		return out
	case "queryType":
		return definitionRef(v.s, v.s.Query)
	case "mutationType":
		return definitionRef(v.s, v.s.Mutation)
	case "subscriptionType":
		return definitionRef(v.s, v.s.Subscription)
	case "directives":
		names := make([]string, 0, len(v.s.Directives))
		for n := range v.s.Directives {
			names = append(names, n)
		}
		sort.Strings(names)
		out := make([]any, 0, len(names))
		for _, n := range names {
			out = append(out, directive{s: v.s, d: v.s.Directives[n]})
		}
		return out
	}
	return nil
}

// typeRef is either a named type (wrap == nil) or a NON_NULL / LIST wrapper.
type typeRef struct {
	s    *ast.Schema
	def  *ast.Definition
	wrap *ast.Type
}

func definitionRef(s *ast.Schema, def *ast.Definition) any {
	if def == nil {
		return nil
	}
	return typeRef{s: s, def: def}
}

func namedTypeRef(s *ast.Schema, name string) any {
	return definitionRef(s, s.Types[name])
}

func wrapped(s *ast.Schema, t *ast.Type) any {
	if t == nil {
		return nil
	}
	if t.NonNull || t.Elem != nil {
		return typeRef{s: s, wrap: t}
	}
	return namedTypeRef(s, t.NamedType)
}

func (v typeRef) field(name string, args map[string]any) any {
	if v.wrap != nil {
		return v.wrapperField(name)
	}

	def := v.def
	switch name {
	case "kind":
		return string(def.Kind)
	case "name":
		return def.Name
	case "description":
		return optional(def.Description)
	case "specifiedByURL":
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil {
				return arg.Value.Raw
			}
		}
		return nil
	case "isOneOf":
		if def.Kind != ast.InputObject {
			return nil
		}
		return def.Directives.ForName("oneOf") != nil
	case "fields":
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			return nil
		}
		out := []any{}
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			if deprecation(f.Directives) != nil && !includeDeprecated(args) {
				continue
			}
			out = append(out, fieldDef{s: v.s, f: f})
		}
		return out
	case "interfaces":
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			return nil
		}
		out := []any{}
		for _, n := range def.Interfaces {
			out = append(out, namedTypeRef(v.s, n))
		}
		return out
	case "possibleTypes":
		if def.Kind != ast.Interface && def.Kind != ast.Union {
			return nil
		}
		out := []any{}
		for _, p := range v.s.GetPossibleTypes(def) {
			out = append(out, typeRef{s: v.s, def: p})
		}
		return out
	case "enumValues":
		if def.Kind != ast.Enum {
			return nil
		}
		out := []any{}
		for _, e := range def.EnumValues {
			if deprecation(e.Directives) != nil && !includeDeprecated(args) {
				continue
			}
			out = append(out, enumValue{e: e})
		}
		return out
	case "inputFields":
		if def.Kind != ast.InputObject {
			return nil
		}
		out := []any{}
		for _, f := range def.Fields {
			out = append(out, inputValue{s: v.s, name: f.Name, desc: f.Description, typ: f.Type, def: f.DefaultValue, dirs: f.Directives})
		}
		return out
	}
	return nil
}

func (v typeRef) wrapperField(name string) any {
	switch name {
	case "kind":
		if v.wrap.NonNull {
			return "NON_NULL"
		}
		return "LIST"
	case "ofType":
		if v.wrap.NonNull {
			inner := *v.wrap
			inner.NonNull = false
			return wrapped(v.s, &inner)
		}
		return wrapped(v.s, v.wrap.Elem)
	}
	return nil
}

type fieldDef struct {
	s *ast.Schema
	f *ast.FieldDefinition
}

func (v fieldDef) field(name string, _ map[string]any) any {
	switch name {
	case "name":
		return v.f.Name
	case "description":
		return optional(v.f.Description)
	case "args":
		return arguments(v.s, v.f.Arguments)
	case "type":
		return wrapped(v.s, v.f.Type)
	case "isDeprecated":
		return deprecation(v.f.Directives) != nil
	case "deprecationReason":
		return deprecation(v.f.Directives)
	}
	return nil
}

type inputValue struct {
	s    *ast.Schema
	name string
	desc string
	typ  *ast.Type
	def  *ast.Value
	dirs ast.DirectiveList
}

func arguments(s *ast.Schema, args ast.ArgumentDefinitionList) []any {
	out := []any{}
	for _, a := range args {
		out = append(out, inputValue{s: s, name: a.Name, desc: a.Description, typ: a.Type, def: a.DefaultValue, dirs: a.Directives})
	}
	return out
}

func (v inputValue) field(name string, _ map[string]any) any {
	switch name {
	case "name":
		return v.name
	case "description":
		return optional(v.desc)
	case "type":
		return wrapped(v.s, v.typ)
	case "defaultValue":
		if v.def == nil {
			return nil
		}
		return v.def.String()
	case "isDeprecated":
		return deprecation(v.dirs) != nil
	case "deprecationReason":
		return deprecation(v.dirs)
	}
	return nil
}

type enumValue struct {
	e *ast.EnumValueDefinition
}

func (v enumValue) field(name string, _ map[string]any) any {
	switch name {
	case "name":
		return v.e.Name
	case "description":
		return optional(v.e.Description)
	case "isDeprecated":
		return deprecation(v.e.Directives) != nil
	case "deprecationReason":
		return deprecation(v.e.Directives)
	}
	return nil
}

type directive struct {
	s *ast.Schema
	d *ast.DirectiveDefinition
}

func (v directive) field(name string, _ map[string]any) any {
	switch name {
	case "name":
		return v.d.Name
	case "description":
		return optional(v.d.Description)
	case "locations":
		out := make([]any, 0, len(v.d.Locations))
		for _, l := range v.d.Locations {
			out = append(out, string(l))
		}
		return out
	case "args":
		return arguments(v.s, v.d.Arguments)
	case "isRepeatable":
		return v.d.IsRepeatable
	}
	return nil
}

// deprecation returns the reason of an @deprecated directive, or nil.
func deprecation(dirs ast.DirectiveList) any {
	d := dirs.ForName("deprecated")
	if d == nil {
		return nil
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
