// Package jobfile decodes a compile job description from YAML into the
// typed IR pkg/codegen/symbolic consumes. The symbolic generator never
// parses source text - it is handed a pre-built ir.SymDecl tree - so the
// on-disk job file is that tree spelled out directly in YAML instead of
// GLYPH source, decoded through gopkg.in/yaml.v3 the same way the
// teacher's own document-shaped formats (e.g. its OpenAPI definitions)
// are decoded rather than hand-parsed.
package jobfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glyphlang/glyph/pkg/ir"
)

// File is the root shape of a <job>.yaml file: the target file/class name
// plus every function declaration to run through the symbolic generator.
type File struct {
	FileName      string     `yaml:"fileName" json:"fileName"`
	MainClassName string     `yaml:"mainClassName" json:"mainClassName"`
	Functions     []Function `yaml:"functions" json:"functions"`
}

// Load reads and decodes a job file from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing job file %s: %w", path, err)
	}
	return &f, nil
}

// ToIR converts the decoded file into the ir.JobConfig + []ir.SymDecl
// shape a jobrunner.CompilationJob carries.
func (f *File) ToIR() (ir.JobConfig, []ir.SymDecl, error) {
	cfg := ir.JobConfig{FileName: f.FileName, MainClassName: f.MainClassName}

	decls := make([]ir.SymDecl, 0, len(f.Functions))
	for i := range f.Functions {
		fn, err := f.Functions[i].toIR()
		if err != nil {
			return cfg, nil, fmt.Errorf("function %q: %w", f.Functions[i].Name, err)
		}
		decls = append(decls, ir.SymDecl{Kind: ir.SymDeclFunction, Function: fn})
	}
	return cfg, decls, nil
}

// Type is the YAML spelling of an ir.SymType.
type Type struct {
	Kind    string `yaml:"kind" json:"kind"`
	Element *Type  `yaml:"element,omitempty" json:"element,omitempty"`
	Key     *Type  `yaml:"key,omitempty" json:"key,omitempty"`
	Value   *Type  `yaml:"value,omitempty" json:"value,omitempty"`
}

func (t Type) toIR() (ir.SymType, error) {
	switch t.Kind {
	case "bool":
		return ir.SymType{Kind: ir.SymBool}, nil
	case "int":
		return ir.SymType{Kind: ir.SymInt}, nil
	case "float":
		return ir.SymType{Kind: ir.SymFloat}, nil
	case "null", "":
		return ir.SymType{Kind: ir.SymNull}, nil
	case "seq":
		if t.Element == nil {
			return ir.SymType{}, fmt.Errorf("seq type missing element")
		}
		elem, err := t.Element.toIR()
		if err != nil {
			return ir.SymType{}, err
		}
		return ir.SymType{Kind: ir.SymSequence, Sequence: &ir.SymSequenceType{Element: elem}}, nil
	case "map":
		if t.Key == nil || t.Value == nil {
			return ir.SymType{}, fmt.Errorf("map type missing key or value")
		}
		key, err := t.Key.toIR()
		if err != nil {
			return ir.SymType{}, err
		}
		val, err := t.Value.toIR()
		if err != nil {
			return ir.SymType{}, err
		}
		return ir.SymType{Kind: ir.SymMap, Map: &ir.SymMapType{Key: key, Value: val}}, nil
	default:
		return ir.SymType{}, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

// Param is a function parameter.
type Param struct {
	Name string `yaml:"name" json:"name"`
	Type Type   `yaml:"type" json:"type"`
}

// Function is one top-level function declaration.
type Function struct {
	Name       string  `yaml:"name" json:"name"`
	Owner      *string `yaml:"owner,omitempty" json:"owner,omitempty"`
	Receive    bool    `yaml:"receive" json:"receive"`
	Static     bool    `yaml:"static" json:"static"`
	Params     []Param `yaml:"params" json:"params"`
	Locals     []Param `yaml:"locals" json:"locals"`
	ReturnType Type    `yaml:"returnType" json:"returnType"`
	Body       []Stmt  `yaml:"body" json:"body"`
}

func (fn *Function) toIR() (*ir.SymFunctionDecl, error) {
	retType, err := fn.ReturnType.toIR()
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}

	params := make([]ir.SymParam, 0, len(fn.Params))
	for _, p := range fn.Params {
		t, err := p.Type.toIR()
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		params = append(params, ir.SymParam{Name: p.Name, Type: t})
	}

	locals := make([]ir.SymLocal, 0, len(fn.Locals))
	for _, l := range fn.Locals {
		t, err := l.Type.toIR()
		if err != nil {
			return nil, fmt.Errorf("local %q: %w", l.Name, err)
		}
		locals = append(locals, ir.SymLocal{Name: l.Name, Type: t})
	}

	body, err := stmtsToIR(fn.Body)
	if err != nil {
		return nil, err
	}

	return &ir.SymFunctionDecl{
		Owner:      fn.Owner,
		Receive:    fn.Receive,
		Static:     fn.Static,
		Name:       fn.Name,
		Params:     params,
		Locals:     locals,
		ReturnType: retType,
		Body:       body,
	}, nil
}

// Stmt is the YAML spelling of an ir.SymStmt. Exactly one field should be
// set; Break/Continue are flags rather than pointers since they carry no
// payload.
type Stmt struct {
	Assign     *AssignStmt `yaml:"assign,omitempty" json:"assign,omitempty"`
	MoveAssign *AssignStmt `yaml:"moveAssign,omitempty" json:"moveAssign,omitempty"`
	Return     *ReturnStmt `yaml:"return,omitempty" json:"return,omitempty"`
	Break      bool        `yaml:"break,omitempty" json:"break,omitempty"`
	Continue   bool        `yaml:"continue,omitempty" json:"continue,omitempty"`
	Goto       string      `yaml:"goto,omitempty" json:"goto,omitempty"`
	Raise      *Expr       `yaml:"raise,omitempty" json:"raise,omitempty"`
	Compound   []Stmt      `yaml:"compound,omitempty" json:"compound,omitempty"`
	While      *WhileStmt  `yaml:"while,omitempty" json:"while,omitempty"`
	If         *IfStmt     `yaml:"if,omitempty" json:"if,omitempty"`
	Call       *CallExpr   `yaml:"call,omitempty" json:"call,omitempty"`
}

type AssignStmt struct {
	Lvalue Expr `yaml:"lvalue" json:"lvalue"`
	Value  Expr `yaml:"value" json:"value"`
}

type ReturnStmt struct {
	Value *Expr `yaml:"value,omitempty" json:"value,omitempty"`
}

type WhileStmt struct {
	Condition Expr   `yaml:"condition" json:"condition"`
	Body      []Stmt `yaml:"body" json:"body"`
}

type IfStmt struct {
	Condition Expr   `yaml:"condition" json:"condition"`
	Then      []Stmt `yaml:"then" json:"then"`
	Else      []Stmt `yaml:"else,omitempty" json:"else,omitempty"`
}

func stmtsToIR(stmts []Stmt) ([]ir.SymStmt, error) {
	out := make([]ir.SymStmt, 0, len(stmts))
	for i := range stmts {
		s, err := stmts[i].toIR()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (s *Stmt) toIR() (ir.SymStmt, error) {
	switch {
	case s.Assign != nil:
		a, err := s.Assign.toIR()
		return ir.SymStmt{Kind: ir.SymStmtAssign, Assign: a}, err
	case s.MoveAssign != nil:
		a, err := s.MoveAssign.toIR()
		return ir.SymStmt{Kind: ir.SymStmtMoveAssign, MoveAssign: a}, err
	case s.Return != nil:
		var val *ir.SymExpr
		if s.Return.Value != nil {
			v, err := s.Return.Value.toIR()
			if err != nil {
				return ir.SymStmt{}, err
			}
			val = &v
		}
		return ir.SymStmt{Kind: ir.SymStmtReturn, Return: &ir.SymReturnStmt{Value: val}}, nil
	case s.Break:
		return ir.SymStmt{Kind: ir.SymStmtBreak}, nil
	case s.Continue:
		return ir.SymStmt{Kind: ir.SymStmtContinue}, nil
	case s.Goto != "":
		return ir.SymStmt{Kind: ir.SymStmtGoto, Goto: &ir.SymGotoStmt{Label: s.Goto}}, nil
	case s.Raise != nil:
		v, err := s.Raise.toIR()
		if err != nil {
			return ir.SymStmt{}, err
		}
		return ir.SymStmt{Kind: ir.SymStmtRaise, Raise: &ir.SymRaiseStmt{Value: v}}, nil
	case s.Compound != nil:
		body, err := stmtsToIR(s.Compound)
		if err != nil {
			return ir.SymStmt{}, err
		}
		return ir.SymStmt{Kind: ir.SymStmtCompound, Compound: &ir.SymCompoundStmt{Body: body}}, nil
	case s.While != nil:
		cond, err := s.While.Condition.toIR()
		if err != nil {
			return ir.SymStmt{}, err
		}
		body, err := stmtsToIR(s.While.Body)
		if err != nil {
			return ir.SymStmt{}, err
		}
		return ir.SymStmt{Kind: ir.SymStmtWhile, While: &ir.SymWhileStmt{Condition: cond, Body: body}}, nil
	case s.If != nil:
		cond, err := s.If.Condition.toIR()
		if err != nil {
			return ir.SymStmt{}, err
		}
		then, err := stmtsToIR(s.If.Then)
		if err != nil {
			return ir.SymStmt{}, err
		}
		els, err := stmtsToIR(s.If.Else)
		if err != nil {
			return ir.SymStmt{}, err
		}
		return ir.SymStmt{Kind: ir.SymStmtIf, If: &ir.SymIfStmt{Condition: cond, Then: then, Else: els}}, nil
	case s.Call != nil:
		call, err := s.Call.toIR()
		if err != nil {
			return ir.SymStmt{}, err
		}
		return ir.SymStmt{Kind: ir.SymStmtFunctionCall, FunctionCall: call}, nil
	default:
		return ir.SymStmt{}, fmt.Errorf("statement has no recognized variant set")
	}
}

func (a *AssignStmt) toIR() (*ir.SymAssignStmt, error) {
	lv, err := a.Lvalue.toIR()
	if err != nil {
		return nil, fmt.Errorf("lvalue: %w", err)
	}
	v, err := a.Value.toIR()
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return &ir.SymAssignStmt{Lvalue: lv, Value: v}, nil
}

// Expr is the YAML spelling of an ir.SymExpr. Type carries the expression's
// own canonical type, required alongside every leaf since the generator
// dispatches to an ops(T) table purely from the IR.
type Expr struct {
	Type      Type        `yaml:"type" json:"type"`
	Clone     *Expr       `yaml:"clone,omitempty" json:"clone,omitempty"`
	Binary    *BinaryExpr `yaml:"binary,omitempty" json:"binary,omitempty"`
	BoolLit   *bool       `yaml:"boolLit,omitempty" json:"boolLit,omitempty"`
	IntLit    *int64      `yaml:"intLit,omitempty" json:"intLit,omitempty"`
	FloatLit  *float64    `yaml:"floatLit,omitempty" json:"floatLit,omitempty"`
	Default   bool        `yaml:"default,omitempty" json:"default,omitempty"`
	MapAccess *AccessExpr `yaml:"mapAccess,omitempty" json:"mapAccess,omitempty"`
	SeqAccess *AccessExpr `yaml:"seqAccess,omitempty" json:"seqAccess,omitempty"`
	Variable  string      `yaml:"variable,omitempty" json:"variable,omitempty"`
}

type BinaryExpr struct {
	Op  string `yaml:"op" json:"op"`
	Lhs Expr   `yaml:"lhs" json:"lhs"`
	Rhs Expr   `yaml:"rhs" json:"rhs"`
}

type AccessExpr struct {
	Container Expr `yaml:"container" json:"container"`
	Index     Expr `yaml:"index" json:"index"`
}

type CallExpr struct {
	Callee  string `yaml:"callee" json:"callee"`
	Receive bool   `yaml:"receive" json:"receive"`
	Static  bool   `yaml:"static" json:"static"`
	Args    []Expr `yaml:"args,omitempty" json:"args,omitempty"`
}

var binOps = map[string]ir.SymBinOp{
	"add": ir.SymOpAdd,
	"sub": ir.SymOpSub,
	"mul": ir.SymOpMul,
	"div": ir.SymOpDiv,
	"lt":  ir.SymOpLt,
	"le":  ir.SymOpLe,
	"gt":  ir.SymOpGt,
	"ge":  ir.SymOpGe,
	"and": ir.SymOpAnd,
	"or":  ir.SymOpOr,
}

func (e *Expr) toIR() (ir.SymExpr, error) {
	t, err := e.Type.toIR()
	if err != nil {
		return ir.SymExpr{}, fmt.Errorf("type: %w", err)
	}

	switch {
	case e.Clone != nil:
		inner, err := e.Clone.toIR()
		if err != nil {
			return ir.SymExpr{}, err
		}
		return ir.SymExpr{Kind: ir.SymExprClone, Type: t, Clone: &ir.SymCloneExpr{Inner: inner}}, nil
	case e.Binary != nil:
		op, ok := binOps[e.Binary.Op]
		if !ok {
			return ir.SymExpr{}, fmt.Errorf("unknown binary op %q", e.Binary.Op)
		}
		lhs, err := e.Binary.Lhs.toIR()
		if err != nil {
			return ir.SymExpr{}, err
		}
		rhs, err := e.Binary.Rhs.toIR()
		if err != nil {
			return ir.SymExpr{}, err
		}
		return ir.SymExpr{Kind: ir.SymExprBinaryOp, Type: t, Binary: &ir.SymBinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}}, nil
	case e.BoolLit != nil:
		return ir.SymExpr{Kind: ir.SymExprBoolLit, Type: t, BoolLit: *e.BoolLit}, nil
	case e.IntLit != nil:
		return ir.SymExpr{Kind: ir.SymExprIntLit, Type: t, IntLit: *e.IntLit}, nil
	case e.FloatLit != nil:
		return ir.SymExpr{Kind: ir.SymExprFloatLit, Type: t, FloatLit: *e.FloatLit}, nil
	case e.Default:
		return ir.SymExpr{Kind: ir.SymExprDefault, Type: t}, nil
	case e.MapAccess != nil:
		acc, err := e.MapAccess.toIR()
		if err != nil {
			return ir.SymExpr{}, err
		}
		return ir.SymExpr{Kind: ir.SymExprMapAccess, Type: t, Access: acc}, nil
	case e.SeqAccess != nil:
		acc, err := e.SeqAccess.toIR()
		if err != nil {
			return ir.SymExpr{}, err
		}
		return ir.SymExpr{Kind: ir.SymExprSeqAccess, Type: t, Access: acc}, nil
	case e.Variable != "":
		return ir.SymExpr{Kind: ir.SymExprVariableAccess, Type: t, Variable: e.Variable}, nil
	default:
		return ir.SymExpr{}, fmt.Errorf("expression has no recognized variant set")
	}
}

func (a *AccessExpr) toIR() (*ir.SymAccessExpr, error) {
	c, err := a.Container.toIR()
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	i, err := a.Index.toIR()
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	return &ir.SymAccessExpr{Container: c, Index: i}, nil
}

func (c *CallExpr) toIR() (*ir.SymCallExpr, error) {
	args := make([]ir.SymExpr, 0, len(c.Args))
	for i := range c.Args {
		a, err := c.Args[i].toIR()
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
		args = append(args, a)
	}
	return &ir.SymCallExpr{Callee: c.Callee, Receive: c.Receive, Static: c.Static, Args: args}, nil
}
