// Package prompt renders flow prompt templates and derives the output shape
// sent alongside them.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"text/template/parse"

	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

var (
	// ErrTemplateParse is returned when template text does not parse.
	ErrTemplateParse = errors.New("template parse failed")

	// ErrUnknownField is returned when a template references a field the
	// input schema does not declare.
	ErrUnknownField = errors.New("template references unknown field")

	// ErrTemplateRender is returned when executing a template fails.
	ErrTemplateRender = errors.New("template render failed")
)

// funcs are available inside every prompt template.
var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		return encodeJSON(v)
	},
	"join": func(sep string, v any) (string, error) {
		if isAbsent(v) {
			return "", nil
		}
		items, ok := v.(jsonArray)
		if !ok {
			return "", fmt.Errorf("join: %T is not an array", v)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = textOf(item)
		}
		return strings.Join(parts, sep), nil
	},
	"default": func(def string, v any) any {
		if isAbsent(v) {
			return def
		}
		return v
	},
}

// Template is a parsed prompt template whose field references have been
// checked against an input schema.
type Template struct {
	name  string
	tmpl  *template.Template
	input []schema.Field
}

// Compile parses text and verifies that every field reference such as
// {{.orderValue}}, {{.shipmentData.location.latitude}} or {{$.userId}} names a
// field declared in input. Inside {{with}} and {{range}} the references are
// checked against the field dot is bound to; references whose target cannot
// be determined statically are rejected.
func Compile(name, text string, input *schema.Schema) (*Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	fields := input.Fields()
	if t.Tree != nil {
		root := &schema.Field{Kind: schema.KindObject, Fields: fields}
		vars := map[string]*schema.Field{"$": root}
		if err := checkList(t.Tree.Root, root, vars); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}
	return &Template{name: name, tmpl: t, input: fields}, nil
}

// indexField types the key variable of {{range $i, $v := ...}}.
var indexField = &schema.Field{Kind: schema.KindNumber}

// The checker types dot and every variable as a schema field. A nil field
// means the type is unknown: it may be printed but not dereferenced.

func checkList(list *parse.ListNode, dot *schema.Field, vars map[string]*schema.Field) error {
	if list == nil {
		return nil
	}
	for _, node := range list.Nodes {
		if err := checkNode(node, dot, vars); err != nil {
			return err
		}
	}
	return nil
}

func checkNode(node parse.Node, dot *schema.Field, vars map[string]*schema.Field) error {
	switch n := node.(type) {
	case *parse.ActionNode:
		typ, err := checkPipe(n.Pipe, dot, vars)
		if err != nil {
			return err
		}
		for _, v := range n.Pipe.Decl {
			vars[v.Ident[0]] = typ
		}
	case *parse.IfNode:
		inner := copyVars(vars)
		typ, err := checkPipe(n.Pipe, dot, inner)
		if err != nil {
			return err
		}
		for _, v := range n.Pipe.Decl {
			inner[v.Ident[0]] = typ
		}
		if err := checkList(n.List, dot, copyVars(inner)); err != nil {
			return err
		}
		return checkList(n.ElseList, dot, inner)
	case *parse.WithNode:
		inner := copyVars(vars)
		typ, err := checkPipe(n.Pipe, dot, inner)
		if err != nil {
			return err
		}
		for _, v := range n.Pipe.Decl {
			inner[v.Ident[0]] = typ
		}
		if err := checkList(n.List, typ, copyVars(inner)); err != nil {
			return err
		}
		return checkList(n.ElseList, dot, inner)
	case *parse.RangeNode:
		inner := copyVars(vars)
		typ, err := checkPipe(n.Pipe, dot, inner)
		if err != nil {
			return err
		}
		elem := elemOf(typ)
		switch len(n.Pipe.Decl) {
		case 1:
			inner[n.Pipe.Decl[0].Ident[0]] = elem
		case 2:
			inner[n.Pipe.Decl[0].Ident[0]] = indexField
			inner[n.Pipe.Decl[1].Ident[0]] = elem
		}
		if err := checkList(n.List, elem, copyVars(inner)); err != nil {
			return err
		}
		return checkList(n.ElseList, dot, inner)
	case *parse.TemplateNode:
		_, err := checkPipe(n.Pipe, dot, vars)
		return err
	}
	return nil
}

// checkPipe checks every argument of pipe and returns the type of its
// result when the pipe is a bare reference.
func checkPipe(pipe *parse.PipeNode, dot *schema.Field, vars map[string]*schema.Field) (*schema.Field, error) {
	if pipe == nil {
		return nil, nil
	}
	var result *schema.Field
	for _, cmd := range pipe.Cmds {
		types := make([]*schema.Field, len(cmd.Args))
		for i, arg := range cmd.Args {
			typ, err := checkArg(arg, dot, vars)
			if err != nil {
				return nil, err
			}
			types[i] = typ
		}
		if err := checkCall(cmd, types); err != nil {
			return nil, err
		}
		if len(pipe.Cmds) == 1 && len(cmd.Args) == 1 {
			result = types[0]
		}
	}
	return result, nil
}

// checkCall enforces argument kinds of the template functions that need them.
func checkCall(cmd *parse.CommandNode, types []*schema.Field) error {
	fn, ok := cmd.Args[0].(*parse.IdentifierNode)
	if !ok || fn.Ident != "join" || len(types) != 3 {
		return nil
	}
	if t := types[2]; t != nil && t.Kind != schema.KindArray {
		return fmt.Errorf("%w: join needs an array, got %s %s", ErrUnknownField, t.Kind, cmd.Args[2])
	}
	return nil
}

func checkArg(arg parse.Node, dot *schema.Field, vars map[string]*schema.Field) (*schema.Field, error) {
	switch a := arg.(type) {
	case *parse.DotNode:
		return dot, nil
	case *parse.FieldNode:
		return resolve(dot, a.Ident, "")
	case *parse.VariableNode:
		base, ok := vars[a.Ident[0]]
		if !ok && len(a.Ident) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, a)
		}
		if len(a.Ident) == 1 {
			return base, nil
		}
		return resolve(base, a.Ident[1:], a.Ident[0])
	case *parse.ChainNode:
		var base *schema.Field
		var err error
		if pipe, ok := a.Node.(*parse.PipeNode); ok {
			base, err = checkPipe(pipe, dot, vars)
		} else {
			base, err = checkArg(a.Node, dot, vars)
		}
		if err != nil {
			return nil, err
		}
		return resolve(base, a.Field, a.Node.String())
	case *parse.PipeNode:
		return checkPipe(a, dot, vars)
	}
	return nil, nil
}

// resolve follows ident from t. prefix names the root for error messages.
func resolve(t *schema.Field, ident []string, prefix string) (*schema.Field, error) {
	path := func(i int) string {
		p := strings.Join(ident[:i+1], ".")
		if prefix != "" {
			return prefix + "." + p
		}
		return p
	}
	for i, name := range ident {
		if t == nil {
			return nil, fmt.Errorf("%w: %s cannot be resolved statically", ErrUnknownField, path(i))
		}
		if t.Kind != schema.KindObject {
			where := "value"
			if i > 0 {
				where = path(i - 1)
			}
			return nil, fmt.Errorf("%w: %s is a %s, not an object", ErrUnknownField, where, t.Kind)
		}
		f, ok := findField(t.Fields, name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, path(i))
		}
		t = &f
	}
	return t, nil
}

func elemOf(t *schema.Field) *schema.Field {
	if t == nil || t.Kind != schema.KindArray {
		return nil
	}
	return t.Items
}

func copyVars(vars map[string]*schema.Field) map[string]*schema.Field {
	out := make(map[string]*schema.Field, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func findField(fields []schema.Field, name string) (schema.Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return schema.Field{}, false
}
