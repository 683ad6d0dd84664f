package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lume/frontend-go/pkg/ast"
	"lume/frontend-go/pkg/stackguard"
)

// programFile is the on-disk layout of a program: definitions whose rule
// bodies are term trees tagged by "type".
type programFile struct {
	Entrypoint  string           `yaml:"entrypoint"`
	Definitions []definitionYAML `yaml:"definitions"`
}

type definitionYAML struct {
	Name  string     `yaml:"name"`
	Rules []ruleYAML `yaml:"rules"`
}

type ruleYAML struct {
	Patterns []any `yaml:"patterns"`
	Body     any   `yaml:"body"`
}

// LoadProgram reads a program file from disk.
func LoadProgram(path string) (*ast.Book, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", absPath, err)
	}
	return ParseProgram(data, absPath)
}

// ParseProgram decodes a program from YAML. source names the input in errors.
func ParseProgram(data []byte, source string) (*ast.Book, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw programFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("loader: %s is empty", source)
		}
		return nil, fmt.Errorf("loader: parse %s: %w", source, err)
	}

	d := &nodeDecoder{guard: stackguard.New()}
	book := ast.NewBook()
	book.Entrypoint = strings.TrimSpace(raw.Entrypoint)
	for i, rawDef := range raw.Definitions {
		name := strings.TrimSpace(rawDef.Name)
		if name == "" {
			return nil, fmt.Errorf("loader: %s: definitions[%d] missing name", source, i)
		}
		if len(rawDef.Rules) == 0 {
			return nil, fmt.Errorf("loader: %s: definition %q has no rules", source, name)
		}
		rules := make([]*ast.Rule, 0, len(rawDef.Rules))
		for j, rawRule := range rawDef.Rules {
			rule, err := d.rule(rawRule)
			if err != nil {
				return nil, fmt.Errorf("loader: %s: %s rule %d: %w", source, name, j, err)
			}
			rules = append(rules, rule)
		}
		if err := book.AddDefinition(ast.NewDefinition(name, rules)); err != nil {
			return nil, fmt.Errorf("loader: %s: %w", source, err)
		}
	}
	return book, nil
}

type nodeDecoder struct {
	guard *stackguard.Guard
}

func (d *nodeDecoder) rule(raw ruleYAML) (*ast.Rule, error) {
	patterns := make([]ast.Pattern, 0, len(raw.Patterns))
	for i, rawPat := range raw.Patterns {
		pat, err := d.pattern(rawPat)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		patterns = append(patterns, pat)
	}
	if raw.Body == nil {
		return nil, fmt.Errorf("missing body")
	}
	body, err := d.term(raw.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewRule(patterns, body), nil
}

// term decodes a tagged mapping. A bare string is shorthand for a variable
// and a bare integer for a number.
func (d *nodeDecoder) term(raw any) (ast.Term, error) {
	switch v := raw.(type) {
	case string:
		if v == "*" {
			return ast.NewEra(), nil
		}
		return ast.NewVar(v), nil
	case int, int64, uint64, float64:
		val, _, err := intValue("number", v)
		if err != nil {
			return nil, err
		}
		return ast.NewNum(val), nil
	case map[string]any:
		return stackguard.Call(d.guard, func() termResult {
			t, err := d.termNode(v)
			return termResult{t, err}
		}).unwrap()
	case nil:
		return nil, fmt.Errorf("missing term")
	default:
		return nil, fmt.Errorf("invalid term %T", raw)
	}
}

type termResult struct {
	term ast.Term
	err  error
}

func (r termResult) unwrap() (ast.Term, error) { return r.term, r.err }

func (d *nodeDecoder) termNode(node map[string]any) (ast.Term, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeVar:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, err
		}
		return ast.NewVar(name), nil
	case ast.NodeRef:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, err
		}
		return ast.NewRef(name), nil
	case ast.NodeEra:
		return ast.NewEra(), nil
	case ast.NodeNum:
		val, err := intField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewNum(val), nil
	case ast.NodeStr:
		val, _ := node["value"].(string)
		return ast.NewStr(val), nil
	case ast.NodeLam:
		name := binderName(node)
		body, err := d.field(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewLam(name, body), nil
	case ast.NodeApp:
		fun, err := d.field(node, "fun")
		if err != nil {
			return nil, err
		}
		arg, err := d.field(node, "arg")
		if err != nil {
			return nil, err
		}
		return ast.NewApp(fun, arg), nil
	case ast.NodeUse:
		name := binderName(node)
		value, err := d.field(node, "value")
		if err != nil {
			return nil, err
		}
		next, err := d.field(node, "next")
		if err != nil {
			return nil, err
		}
		return ast.NewUse(name, value, next), nil
	case ast.NodeLet:
		rawPat, ok := node["pattern"]
		if !ok {
			return nil, fmt.Errorf("let missing pattern")
		}
		pat, err := d.pattern(rawPat)
		if err != nil {
			return nil, err
		}
		value, err := d.field(node, "value")
		if err != nil {
			return nil, err
		}
		next, err := d.field(node, "next")
		if err != nil {
			return nil, err
		}
		return ast.NewLet(pat, value, next), nil
	case ast.NodeTup:
		elementsVal, _ := node["elements"].([]any)
		elements := make([]ast.Term, 0, len(elementsVal))
		for i, raw := range elementsVal {
			el, err := d.term(raw)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			elements = append(elements, el)
		}
		return ast.NewTup(elements), nil
	case ast.NodeOpr:
		op, err := requireString(node, "op")
		if err != nil {
			return nil, err
		}
		left, err := d.field(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := d.field(node, "right")
		if err != nil {
			return nil, err
		}
		return ast.NewOpr(ast.Operator(op), left, right), nil
	case ast.NodeMat:
		arg, err := d.field(node, "arg")
		if err != nil {
			return nil, err
		}
		armsVal, _ := node["arms"].([]any)
		arms := make([]*ast.MatchArm, 0, len(armsVal))
		for i, raw := range armsVal {
			armNode, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid match arm %d %T", i, raw)
			}
			arm, err := d.matchArm(armNode)
			if err != nil {
				return nil, fmt.Errorf("match arm %d: %w", i, err)
			}
			arms = append(arms, arm)
		}
		return ast.NewMat(arg, arms), nil
	case "":
		return nil, fmt.Errorf("term missing type")
	default:
		return nil, fmt.Errorf("unsupported term type %q", typ)
	}
}

func (d *nodeDecoder) matchArm(node map[string]any) (*ast.MatchArm, error) {
	ctor, err := requireString(node, "ctor")
	if err != nil {
		return nil, err
	}
	fieldsVal, _ := node["fields"].([]any)
	fields := make([]string, 0, len(fieldsVal))
	for _, raw := range fieldsVal {
		switch f := raw.(type) {
		case string:
			if f == "*" {
				f = ""
			}
			fields = append(fields, f)
		case nil:
			fields = append(fields, "")
		default:
			return nil, fmt.Errorf("invalid field binder %T", raw)
		}
	}
	body, err := d.field(node, "body")
	if err != nil {
		return nil, err
	}
	return ast.NewMatchArm(ctor, fields, body), nil
}

// pattern decodes a tagged pattern mapping. A bare string binds a variable
// ("*" is a wildcard) and a bare integer matches a number.
func (d *nodeDecoder) pattern(raw any) (ast.Pattern, error) {
	switch v := raw.(type) {
	case string:
		if v == "*" {
			return ast.NewPVar(""), nil
		}
		return ast.NewPVar(v), nil
	case int, int64, uint64, float64:
		val, _, err := intValue("number", v)
		if err != nil {
			return nil, err
		}
		return ast.NewPNum(val), nil
	case map[string]any:
		return stackguard.Call(d.guard, func() patternResult {
			p, err := d.patternNode(v)
			return patternResult{p, err}
		}).unwrap()
	default:
		return nil, fmt.Errorf("invalid pattern %T", raw)
	}
}

type patternResult struct {
	pattern ast.Pattern
	err     error
}

func (r patternResult) unwrap() (ast.Pattern, error) { return r.pattern, r.err }

func (d *nodeDecoder) patternNode(node map[string]any) (ast.Pattern, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodePVar:
		name := binderName(node)
		return ast.NewPVar(name), nil
	case ast.NodePNum:
		val, err := intField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewPNum(val), nil
	case ast.NodePCtr:
		name, err := requireString(node, "name")
		if err != nil {
			return nil, err
		}
		args, err := d.patterns(node["args"])
		if err != nil {
			return nil, err
		}
		return ast.NewPCtr(name, args), nil
	case ast.NodePTup:
		elements, err := d.patterns(node["elements"])
		if err != nil {
			return nil, err
		}
		return ast.NewPTup(elements), nil
	default:
		return nil, fmt.Errorf("unsupported pattern type %q", typ)
	}
}

func (d *nodeDecoder) patterns(raw any) ([]ast.Pattern, error) {
	items, _ := raw.([]any)
	out := make([]ast.Pattern, 0, len(items))
	for _, item := range items {
		pat, err := d.pattern(item)
		if err != nil {
			return nil, err
		}
		out = append(out, pat)
	}
	return out, nil
}

func (d *nodeDecoder) field(node map[string]any, key string) (ast.Term, error) {
	raw, ok := node[key]
	if !ok {
		typ, _ := node["type"].(string)
		return nil, fmt.Errorf("%s missing %s", typ, key)
	}
	return d.term(raw)
}

// binderName reads an optional binder; absent, empty and "*" all erase.
func binderName(node map[string]any) string {
	name, _ := node["name"].(string)
	name = strings.TrimSpace(name)
	if name == "*" {
		return ""
	}
	return name
}

func requireString(node map[string]any, key string) (string, error) {
	val, ok := node[key].(string)
	if !ok || strings.TrimSpace(val) == "" {
		typ, _ := node["type"].(string)
		return "", fmt.Errorf("%s missing %s", typ, key)
	}
	return val, nil
}

func intField(node map[string]any, key string) (int64, error) {
	val, ok, err := intValue(key, node[key])
	if !ok {
		typ, _ := node["type"].(string)
		return 0, fmt.Errorf("%s missing integer %s", typ, key)
	}
	return val, err
}

// intValue converts a decoded YAML number. ok is false when raw is not a
// number at all.
func intValue(key string, raw any) (val int64, ok bool, err error) {
	switch v := raw.(type) {
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, true, fmt.Errorf("%s %d is out of range", key, v)
		}
		return int64(v), true, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, true, fmt.Errorf("%s %v is not an integer", key, v)
		}
		return int64(v), true, nil
	default:
		return 0, false, nil
	}
}
