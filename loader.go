package main

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ibex-verif/ibex/ir"
)

// The YAML goto-program format mirrors the ir data model: a symbol table
// and a list of functions whose instructions reference jump targets by
// instruction index.

type yamlType struct {
	Kind     string      `yaml:"kind"`
	Width    uint        `yaml:"width"`
	Fraction uint        `yaml:"fraction"`
	Exponent uint        `yaml:"exponent"`
	Sub      *yamlType   `yaml:"sub"`
	Size     *yamlExpr   `yaml:"size"`
	Fields   []yamlField `yaml:"fields"`
	This     bool        `yaml:"this"`
	Params   []*yamlType `yaml:"params"`
	Ret      *yamlType   `yaml:"ret"`
}

type yamlField struct {
	Name string    `yaml:"name"`
	Type *yamlType `yaml:"type"`
}

type yamlExpr struct {
	Kind  string      `yaml:"kind"`
	Type  *yamlType   `yaml:"type"`
	Id    string      `yaml:"id"`
	Value string      `yaml:"value"`
	Ops   []*yamlExpr `yaml:"ops"`
	NoBC  bool        `yaml:"no-bounds-check"`
	Loc   *yamlLoc    `yaml:"loc"`
}

type yamlLoc struct {
	File     string          `yaml:"file"`
	Line     string          `yaml:"line"`
	Column   string          `yaml:"column"`
	Function string          `yaml:"function"`
	Pragmas  map[string]bool `yaml:"pragmas"`
	User     bool            `yaml:"user-provided"`
	Class    string          `yaml:"property-class"`
}

type yamlInstr struct {
	Kind      string      `yaml:"kind"`
	Lhs       *yamlExpr   `yaml:"lhs"`
	Rhs       *yamlExpr   `yaml:"rhs"`
	Callee    *yamlExpr   `yaml:"callee"`
	Args      []*yamlExpr `yaml:"args"`
	Result    *yamlExpr   `yaml:"result"`
	Value     *yamlExpr   `yaml:"value"`
	Statement string      `yaml:"statement"`
	Cond      *yamlExpr   `yaml:"cond"`
	Targets   []int       `yaml:"targets"`
	Labels    []string    `yaml:"labels"`
	Loc       *yamlLoc    `yaml:"loc"`
}

type yamlSymbol struct {
	Name   string    `yaml:"name"`
	Type   *yamlType `yaml:"type"`
	Mode   string    `yaml:"mode"`
	Static bool      `yaml:"static"`
}

type yamlFunction struct {
	Name         string       `yaml:"name"`
	Instructions []*yamlInstr `yaml:"instructions"`
}

type yamlProgram struct {
	Symbols   []*yamlSymbol   `yaml:"symbols"`
	Functions []*yamlFunction `yaml:"functions"`
}

// LoadProgram reads a YAML goto-program, returning its functions and
// namespace.
func LoadProgram(path string) (*ir.Functions, *ir.Namespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var prog yamlProgram
	if err := yaml.UnmarshalStrict(data, &prog); err != nil {
		return nil, nil, fmt.Errorf("program %s: %w", path, err)
	}

	ns := ir.NewNamespace()
	registerInternalSymbols(ns)

	for _, s := range prog.Symbols {
		typ, err := buildType(s.Type)
		if err != nil {
			return nil, nil, err
		}
		ns.Register(&ir.Symbol{
			Name:           s.Name,
			Type:           typ,
			Mode:           parseMode(s.Mode),
			StaticLifetime: s.Static,
		})
	}

	fns := &ir.Functions{}
	for _, f := range prog.Functions {
		body, err := buildBody(f.Instructions)
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		if _, known := ns.Lookup(f.Name); !known {
			ns.Register(&ir.Symbol{
				Name: f.Name,
				Type: ir.CodeType(false, nil, nil),
			})
		}
		fns.Add(&ir.Function{Name: f.Name, Body: body})
	}
	return fns, ns, nil
}

// registerInternalSymbols provides the sentinels the instrumentation
// consumes, unless the program declares its own.
func registerInternalSymbols(ns *ir.Namespace) {
	voidPtr := ir.PointerTo(ir.UnsignedBV(8))
	ns.Register(&ir.Symbol{
		Name: ir.MemoryLeakSymbol, Type: voidPtr, StaticLifetime: true,
	})
	ns.Register(&ir.Symbol{
		Name: ir.DeadObjectSymbol, Type: voidPtr, StaticLifetime: true,
	})
}

func parseMode(s string) ir.Mode {
	switch s {
	case "cpp", "c++":
		return ir.ModeCpp
	case "java":
		return ir.ModeJava
	}
	return ir.ModeC
}

func buildType(t *yamlType) (*ir.Type, error) {
	if t == nil {
		return ir.SignedBV(32), nil
	}
	switch t.Kind {
	case "bool":
		return ir.BoolType(), nil
	case "signedbv":
		return ir.SignedBV(t.Width), nil
	case "unsignedbv":
		return ir.UnsignedBV(t.Width), nil
	case "floatbv":
		if t.Fraction == 0 {
			return ir.Float64Type(), nil
		}
		return ir.FloatBV(t.Fraction, t.Exponent), nil
	case "float":
		return ir.Float32Type(), nil
	case "double":
		return ir.Float64Type(), nil
	case "pointer":
		sub, err := buildType(t.Sub)
		if err != nil {
			return nil, err
		}
		return ir.PointerTo(sub), nil
	case "array", "vector":
		sub, err := buildType(t.Sub)
		if err != nil {
			return nil, err
		}
		var size *ir.Expr
		if t.Size != nil {
			var err error
			size, err = buildExpr(t.Size)
			if err != nil {
				return nil, err
			}
		}
		if t.Kind == "vector" {
			return ir.VectorType(sub, size), nil
		}
		return ir.ArrayType(sub, size), nil
	case "struct":
		fields := make([]ir.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := buildType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = ir.Field{Name: f.Name, Type: ft}
		}
		return ir.StructType(fields...), nil
	case "code":
		params := make([]*ir.Type, len(t.Params))
		for i, p := range t.Params {
			pt, err := buildType(p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		var ret *ir.Type
		if t.Ret != nil {
			var err error
			ret, err = buildType(t.Ret)
			if err != nil {
				return nil, err
			}
		}
		return ir.CodeType(t.This, params, ret), nil
	}
	return nil, fmt.Errorf("unknown type kind %q", t.Kind)
}

func buildLoc(l *yamlLoc) *ir.SourceLocation {
	if l == nil {
		return nil
	}
	return &ir.SourceLocation{
		File:          l.File,
		Line:          l.Line,
		Column:        l.Column,
		Function:      l.Function,
		Pragmas:       l.Pragmas,
		UserProvided:  l.User,
		PropertyClass: l.Class,
	}
}

func buildExpr(y *yamlExpr) (*ir.Expr, error) {
	if y == nil {
		return nil, fmt.Errorf("missing expression")
	}

	ops := make([]*ir.Expr, len(y.Ops))
	for i, op := range y.Ops {
		var err error
		ops[i], err = buildExpr(op)
		if err != nil {
			return nil, err
		}
	}

	typ, err := buildType(y.Type)
	if err != nil {
		return nil, err
	}

	e, err := buildExprKind(y, typ, ops)
	if err != nil {
		return nil, err
	}
	if y.NoBC {
		e = e.WithoutBoundsCheck()
	}
	if loc := buildLoc(y.Loc); loc != nil {
		e = e.WithLoc(loc)
	}
	return e, nil
}

func buildExprKind(y *yamlExpr, typ *ir.Type, ops []*ir.Expr) (*ir.Expr, error) {
	binary := func(f func(a, b *ir.Expr) *ir.Expr) (*ir.Expr, error) {
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s expects 2 operands, got %d", y.Kind, len(ops))
		}
		return f(ops[0], ops[1]), nil
	}
	unary := func(f func(a *ir.Expr) *ir.Expr) (*ir.Expr, error) {
		if len(ops) != 1 {
			return nil, fmt.Errorf("%s expects 1 operand, got %d", y.Kind, len(ops))
		}
		return f(ops[0]), nil
	}

	switch y.Kind {
	case "symbol":
		return ir.Sym(y.Id, typ), nil
	case "constant":
		if y.Value == "null" {
			return ir.NullPointer(typ), nil
		}
		if y.Value == "true" {
			return ir.True(), nil
		}
		if y.Value == "false" {
			return ir.False(), nil
		}
		v, ok := new(big.Int).SetString(y.Value, 10)
		if !ok {
			return nil, fmt.Errorf("bad constant value %q", y.Value)
		}
		return ir.FromInteger(v, typ), nil
	case "string-constant":
		return ir.StringConst(y.Id), nil
	case "nondet":
		return ir.Nondet(typ), nil
	case "infinity":
		return ir.Infinity(typ), nil
	case "index":
		return binary(ir.IndexExpr)
	case "member":
		if len(ops) != 1 {
			return nil, fmt.Errorf("member expects 1 operand")
		}
		return ir.MemberExpr(ops[0], y.Id, typ), nil
	case "dereference":
		return unary(ir.Deref)
	case "address-of":
		return unary(ir.AddressOf)
	case "+":
		return ir.Plus(ops...), nil
	case "-":
		return binary(ir.Minus)
	case "*":
		return ir.Mult(ops...), nil
	case "/":
		return binary(ir.Div)
	case "mod":
		return binary(ir.Mod)
	case "unary-":
		return unary(ir.UnaryMinus)
	case "shl":
		return binary(ir.Shl)
	case "ashr":
		return binary(ir.AShr)
	case "lshr":
		return binary(ir.LShr)
	case "typecast":
		if len(ops) != 1 {
			return nil, fmt.Errorf("typecast expects 1 operand")
		}
		return ir.Typecast(ops[0], typ), nil
	case "if":
		if len(ops) != 3 {
			return nil, fmt.Errorf("if expects 3 operands")
		}
		return ir.IfExpr(ops[0], ops[1], ops[2]), nil
	case "and":
		return ir.And(ops...), nil
	case "or":
		return ir.Or(ops...), nil
	case "not":
		return unary(ir.Not)
	case "=>":
		return binary(ir.Implies)
	case "=":
		return binary(ir.Equal)
	case "!=":
		return binary(ir.NotEqual)
	case "<":
		return binary(ir.Lt)
	case "<=":
		return binary(ir.Le)
	case ">":
		return binary(ir.Gt)
	case ">=":
		return binary(ir.Ge)
	case "byte-extract-le":
		if len(ops) != 2 {
			return nil, fmt.Errorf("byte-extract-le expects 2 operands")
		}
		return ir.ByteExtractLE(ops[0], ops[1], typ), nil
	case "byte-extract-be":
		if len(ops) != 2 {
			return nil, fmt.Errorf("byte-extract-be expects 2 operands")
		}
		return ir.ByteExtractBE(ops[0], ops[1], typ), nil
	case "struct":
		return ir.StructExpr(typ, ops...), nil
	case "array":
		return ir.ArrayExpr(typ, ops...), nil
	case "array-list":
		return ir.ArrayList(typ, ops...), nil
	case "array-of":
		if len(ops) != 1 {
			return nil, fmt.Errorf("array-of expects 1 operand")
		}
		return ir.ArrayOfExpr(typ, ops[0]), nil
	case "with":
		if len(ops) != 3 {
			return nil, fmt.Errorf("with expects 3 operands")
		}
		return ir.With(ops[0], ops[1], ops[2]), nil
	case "lambda":
		if len(ops) != 2 {
			return nil, fmt.Errorf("lambda expects 2 operands")
		}
		return ir.Lambda(ops[0], ops[1], typ), nil
	case "forall":
		return binary(ir.Forall)
	case "exists":
		return binary(ir.Exists)
	case "r_ok":
		return binary(ir.ROk)
	case "w_ok":
		return binary(ir.WOk)
	case "overflow":
		return ir.Overflow(y.Id, ops...), nil
	case "is-invalid-pointer":
		return unary(ir.IsInvalidPointer)
	case "is-null-pointer":
		return unary(ir.IsNullPointer)
	case "same-object":
		return binary(ir.SameObject)
	case "dynamic-object":
		return unary(ir.DynamicObject)
	case "malloc-object":
		return unary(ir.MallocObject)
	case "dead-object":
		return unary(ir.DeadObject)
	case "deallocated":
		return unary(ir.Deallocated)
	case "dynamic-size":
		return ir.DynamicSize(), nil
	case "object-size":
		return unary(ir.ObjectSize)
	case "pointer-offset":
		return unary(ir.PointerOffsetExpr)
	case "integer-address":
		return unary(ir.IntegerAddress)
	case "isinf":
		return unary(ir.IsInf)
	case "isnan":
		return unary(ir.IsNaN)
	case "ieee-float-equal":
		return binary(ir.IeeeFloatEqual)
	}
	return nil, fmt.Errorf("unknown expression kind %q", y.Kind)
}

var instrKinds = map[string]ir.InstrKind{
	"assign":       ir.InstrAssign,
	"call":         ir.InstrFunctionCall,
	"return":       ir.InstrReturn,
	"throw":        ir.InstrThrow,
	"assert":       ir.InstrAssert,
	"assume":       ir.InstrAssume,
	"goto":         ir.InstrGoto,
	"other":        ir.InstrOther,
	"dead":         ir.InstrDead,
	"end-function": ir.InstrEndFunction,
	"skip":         ir.InstrSkip,
}

func buildBody(instrs []*yamlInstr) (*ir.Program, error) {
	body := &ir.Program{}
	for idx, y := range instrs {
		kind, known := instrKinds[y.Kind]
		if !known {
			return nil, fmt.Errorf("instruction %d: unknown kind %q", idx, y.Kind)
		}
		i := &ir.Instruction{
			Kind:      kind,
			Statement: y.Statement,
			Labels:    y.Labels,
			Loc:       buildLoc(y.Loc),
		}
		var err error
		assign := func(dst **ir.Expr, y *yamlExpr) {
			if err != nil || y == nil {
				return
			}
			*dst, err = buildExpr(y)
		}
		assign(&i.Lhs, y.Lhs)
		assign(&i.Rhs, y.Rhs)
		assign(&i.Callee, y.Callee)
		assign(&i.Result, y.Result)
		assign(&i.Value, y.Value)
		assign(&i.Cond, y.Cond)
		for _, a := range y.Args {
			var arg *ir.Expr
			assign(&arg, a)
			i.Args = append(i.Args, arg)
		}
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", idx, err)
		}
		body.Append(i)
	}
	// Resolve jump targets by index once all instructions exist.
	for idx, y := range instrs {
		for _, t := range y.Targets {
			if t < 0 || t >= len(body.Instructions) {
				return nil, fmt.Errorf("instruction %d: target %d out of range", idx, t)
			}
			body.Instructions[idx].Targets =
				append(body.Instructions[idx].Targets, body.Instructions[t])
		}
	}
	body.ComputeTargets()
	return body, nil
}
