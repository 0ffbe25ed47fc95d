// Package image serializes compiled programs to .fxi files.
package image

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/flux-lang/flux/vm"
)

// Magic identifies a program image file.
const Magic = "FLUXIMG"

// Version is the current image format version. Readers reject any other
// version.
const Version = 1

var cborEncMode cbor.EncMode

func init() {
	// Canonical mode keeps encoding deterministic: the same program
	// always produces the same bytes.
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// fileImage is the on-disk envelope.
type fileImage struct {
	Magic   string    `cbor:"magic"`
	Version int       `cbor:"version"`
	Program progImage `cbor:"program"`
}

type progImage struct {
	Code   []insImage   `cbor:"code"`
	Consts []constImage `cbor:"consts"`
}

type insImage struct {
	Op   uint8  `cbor:"op"`
	Arg  int    `cbor:"arg,omitempty"`
	Name string `cbor:"name,omitempty"`
}

type constImage struct {
	Kind  uint8    `cbor:"kind"`
	Int   int64    `cbor:"int,omitempty"`
	Float float64  `cbor:"float,omitempty"`
	Bool  bool     `cbor:"bool,omitempty"`
	Str   string   `cbor:"str,omitempty"`
	Fn    *fnImage `cbor:"fn,omitempty"`
}

// fnImage serializes a function blueprint; nested blueprints recurse.
type fnImage struct {
	Name     string       `cbor:"name,omitempty"`
	Params   []string     `cbor:"params,omitempty"`
	FreeVars []string     `cbor:"free,omitempty"`
	Code     []insImage   `cbor:"code"`
	Consts   []constImage `cbor:"consts,omitempty"`
}

// Marshal serializes a program to CBOR image bytes.
func Marshal(p *vm.Program) ([]byte, error) {
	prog, err := encodeProgram(p.Code, p.Consts)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(&fileImage{
		Magic:   Magic,
		Version: Version,
		Program: prog,
	})
}

// Unmarshal deserializes a program from image bytes.
func Unmarshal(data []byte) (*vm.Program, error) {
	var f fileImage
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if f.Magic != Magic {
		return nil, fmt.Errorf("image: bad magic %q", f.Magic)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("image: unsupported version %d (want %d)", f.Version, Version)
	}
	code, consts, err := decodeProgram(f.Program.Code, f.Program.Consts)
	if err != nil {
		return nil, err
	}
	return &vm.Program{Code: code, Consts: consts}, nil
}

// WriteFile serializes a program and writes it to path.
func WriteFile(path string, p *vm.Program) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a program image from path.
func ReadFile(path string) (*vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: cannot read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

func encodeProgram(code []vm.Instruction, consts []vm.Value) (progImage, error) {
	p := progImage{Code: encodeCode(code)}
	for i, c := range consts {
		ci, err := encodeConst(c)
		if err != nil {
			return progImage{}, fmt.Errorf("image: constant %d: %w", i, err)
		}
		p.Consts = append(p.Consts, ci)
	}
	return p, nil
}

func encodeCode(code []vm.Instruction) []insImage {
	out := make([]insImage, len(code))
	for i, ins := range code {
		out[i] = insImage{Op: uint8(ins.Op), Arg: ins.Arg, Name: ins.Name}
	}
	return out
}

func encodeConst(v vm.Value) (constImage, error) {
	ci := constImage{Kind: uint8(v.Kind())}
	switch v.Kind() {
	case vm.KindNone:
	case vm.KindInt:
		ci.Int = v.Int()
	case vm.KindFloat:
		ci.Float = v.Float()
	case vm.KindBool:
		ci.Bool = v.Bool()
	case vm.KindString:
		ci.Str = v.Str()
	case vm.KindBlueprint:
		fn := v.Blueprint()
		sub, err := encodeProgram(fn.Code, fn.Consts)
		if err != nil {
			return constImage{}, err
		}
		ci.Fn = &fnImage{
			Name:     fn.Name,
			Params:   fn.Params,
			FreeVars: fn.FreeVars,
			Code:     sub.Code,
			Consts:   sub.Consts,
		}
	default:
		return constImage{}, fmt.Errorf("kind %s cannot appear in a constant pool", v.Kind())
	}
	return ci, nil
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func decodeProgram(code []insImage, consts []constImage) ([]vm.Instruction, []vm.Value, error) {
	outCode, err := decodeCode(code)
	if err != nil {
		return nil, nil, err
	}
	var outConsts []vm.Value
	for i, ci := range consts {
		v, err := decodeConst(ci)
		if err != nil {
			return nil, nil, fmt.Errorf("image: constant %d: %w", i, err)
		}
		outConsts = append(outConsts, v)
	}
	return outCode, outConsts, nil
}

func decodeCode(code []insImage) ([]vm.Instruction, error) {
	out := make([]vm.Instruction, len(code))
	for i, ins := range code {
		op := vm.Opcode(ins.Op)
		if !op.Valid() {
			return nil, fmt.Errorf("image: invalid opcode %d at instruction %d", ins.Op, i)
		}
		out[i] = vm.Instruction{Op: op, Arg: ins.Arg, Name: ins.Name}
	}
	return out, nil
}

func decodeConst(ci constImage) (vm.Value, error) {
	switch vm.Kind(ci.Kind) {
	case vm.KindNone:
		return vm.None, nil
	case vm.KindInt:
		return vm.FromInt(ci.Int), nil
	case vm.KindFloat:
		return vm.FromFloat(ci.Float), nil
	case vm.KindBool:
		return vm.FromBool(ci.Bool), nil
	case vm.KindString:
		return vm.FromString(ci.Str), nil
	case vm.KindBlueprint:
		if ci.Fn == nil {
			return vm.None, fmt.Errorf("blueprint constant missing body")
		}
		code, consts, err := decodeProgram(ci.Fn.Code, ci.Fn.Consts)
		if err != nil {
			return vm.None, err
		}
		return vm.FromBlueprint(&vm.Blueprint{
			Name:     ci.Fn.Name,
			Params:   ci.Fn.Params,
			FreeVars: ci.Fn.FreeVars,
			Code:     code,
			Consts:   consts,
		}), nil
	}
	return vm.None, fmt.Errorf("invalid constant kind %d", ci.Kind)
}
