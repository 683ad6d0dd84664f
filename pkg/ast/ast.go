package ast

type NodeType string

const (
	NodeVar  NodeType = "Var"
	NodeRef  NodeType = "Ref"
	NodeEra  NodeType = "Era"
	NodeNum  NodeType = "Num"
	NodeStr  NodeType = "Str"
	NodeLam  NodeType = "Lam"
	NodeApp  NodeType = "App"
	NodeUse  NodeType = "Use"
	NodeLet  NodeType = "Let"
	NodeTup  NodeType = "Tup"
	NodeOpr  NodeType = "Opr"
	NodeMat  NodeType = "Mat"
	NodeArm  NodeType = "MatchArm"
	NodePVar NodeType = "PVar"
	NodePCtr NodeType = "PCtr"
	NodePNum NodeType = "PNum"
	NodePTup NodeType = "PTup"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Term interface {
	Node
	termNode()
}

type termMarker struct{}

func (termMarker) termNode() {}

// Variables and references

// Var refers to a name bound by an enclosing lambda, use, let or match arm.
type Var struct {
	nodeImpl
	termMarker

	Name string `json:"name"`
}

func NewVar(name string) *Var {
	return &Var{nodeImpl: newNodeImpl(NodeVar), Name: name}
}

// Ref refers to a top-level definition. Substitution never touches it.
type Ref struct {
	nodeImpl
	termMarker

	Name string `json:"name"`
}

func NewRef(name string) *Ref {
	return &Ref{nodeImpl: newNodeImpl(NodeRef), Name: name}
}

// Literals

type Era struct {
	nodeImpl
	termMarker
}

func NewEra() *Era {
	return &Era{nodeImpl: newNodeImpl(NodeEra)}
}

type Num struct {
	nodeImpl
	termMarker

	Value int64 `json:"value"`
}

func NewNum(value int64) *Num {
	return &Num{nodeImpl: newNodeImpl(NodeNum), Value: value}
}

type Str struct {
	nodeImpl
	termMarker

	Value string `json:"value"`
}

func NewStr(value string) *Str {
	return &Str{nodeImpl: newNodeImpl(NodeStr), Value: value}
}

// Functions

// Lam is a single-argument abstraction. An empty Name erases the argument.
type Lam struct {
	nodeImpl
	termMarker

	Name string `json:"name,omitempty"`
	Body Term   `json:"body"`
}

func NewLam(name string, body Term) *Lam {
	return &Lam{nodeImpl: newNodeImpl(NodeLam), Name: name, Body: body}
}

type App struct {
	nodeImpl
	termMarker

	Fun Term `json:"fun"`
	Arg Term `json:"arg"`
}

func NewApp(fun, arg Term) *App {
	return &App{nodeImpl: newNodeImpl(NodeApp), Fun: fun, Arg: arg}
}

// Bindings

// Use binds Value as Name within Next. Named uses are inlined by the
// use-desugar pass; an empty Name keeps the node for later evaluation.
type Use struct {
	nodeImpl
	termMarker

	Name  string `json:"name,omitempty"`
	Value Term   `json:"value"`
	Next  Term   `json:"next"`
}

func NewUse(name string, value, next Term) *Use {
	return &Use{nodeImpl: newNodeImpl(NodeUse), Name: name, Value: value, Next: next}
}

// HasName reports whether the binding captures a name.
func (u *Use) HasName() bool { return u.Name != "" }

// Let destructures Value with Pattern within Next.
type Let struct {
	nodeImpl
	termMarker

	Pattern Pattern `json:"pattern"`
	Value   Term    `json:"value"`
	Next    Term    `json:"next"`
}

func NewLet(pattern Pattern, value, next Term) *Let {
	return &Let{nodeImpl: newNodeImpl(NodeLet), Pattern: pattern, Value: value, Next: next}
}

// Data

type Tup struct {
	nodeImpl
	termMarker

	Elements []Term `json:"elements"`
}

func NewTup(elements []Term) *Tup {
	return &Tup{nodeImpl: newNodeImpl(NodeTup), Elements: elements}
}

type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpEq  Operator = "=="
	OpNe  Operator = "!="
	OpLt  Operator = "<"
	OpGt  Operator = ">"
)

type Opr struct {
	nodeImpl
	termMarker

	Op    Operator `json:"op"`
	Left  Term     `json:"left"`
	Right Term     `json:"right"`
}

func NewOpr(op Operator, left, right Term) *Opr {
	return &Opr{nodeImpl: newNodeImpl(NodeOpr), Op: op, Left: left, Right: right}
}

// Matching

// MatchArm binds Fields (positionally, empty entries erase) within Body.
type MatchArm struct {
	nodeImpl

	Ctor   string   `json:"ctor"`
	Fields []string `json:"fields,omitempty"`
	Body   Term     `json:"body"`
}

func NewMatchArm(ctor string, fields []string, body Term) *MatchArm {
	return &MatchArm{nodeImpl: newNodeImpl(NodeArm), Ctor: ctor, Fields: fields, Body: body}
}

// Binds reports whether the arm introduces name.
func (a *MatchArm) Binds(name string) bool {
	for _, field := range a.Fields {
		if field != "" && field == name {
			return true
		}
	}
	return false
}

type Mat struct {
	nodeImpl
	termMarker

	Arg  Term        `json:"arg"`
	Arms []*MatchArm `json:"arms"`
}

func NewMat(arg Term, arms []*MatchArm) *Mat {
	return &Mat{nodeImpl: newNodeImpl(NodeMat), Arg: arg, Arms: arms}
}
