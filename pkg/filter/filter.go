package filter

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/DrSkyle/proofscope/pkg/graph"
)

// Filter is a compiled CEL predicate over nodes. The variables are id, kind
// (the node type), label, content, order, line and terms, e.g.
//
//	kind == "theorem" && order < 40
//	label.startsWith("VIII:") || "group" in terms
//
// A nil *Filter matches every node.
type Filter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("label", cel.StringType),
		cel.Variable("content", cel.StringType),
		cel.Variable("order", cel.IntType),
		cel.Variable("line", cel.IntType),
		cel.Variable("terms", cel.ListType(cel.StringType)),
	)
}

// Compile parses and type-checks expr. An empty expression yields a nil filter.
func Compile(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter %q program creation error: %w", expr, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against n.
func (f *Filter) Match(n *graph.Node) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(vars(n))
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", f.expr, n.ID, err)
	}
	match, ok := out.Value().(bool)
	return ok && match, nil
}

// Apply returns the matching nodes in their input order. Nodes whose
// evaluation fails are left out.
func (f *Filter) Apply(nodes []*graph.Node) []*graph.Node {
	if f == nil {
		return nodes
	}
	out := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		ok, err := f.Match(n)
		if err != nil {
			slog.Debug("Filter evaluation failed", "node", n.ID, "error", err)
			continue
		}
		if ok {
			out = append(out, n)
		}
	}
	return out
}

func vars(n *graph.Node) map[string]any {
	line := int64(-1)
	if n.Position != nil {
		line = int64(n.Position.LineStart)
	}
	terms := n.Terms
	if terms == nil {
		terms = []string{}
	}
	return map[string]any{
		"id":      n.ID,
		"kind":    n.TypeKey(),
		"label":   n.Label,
		"content": n.Content,
		"order":   int64(n.OrderIndex),
		"line":    line,
		"terms":   terms,
	}
}
