package image

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/flux-lang/flux/compiler"
	"github.com/flux-lang/flux/vm"
)

func TestRoundTripPreservesExecution(t *testing.T) {
	src := `
func makeAdder(n) {
	return func (x) { return x + n }
}
let add5 = makeAdder(5)
print add5(37)
`
	p, err := compiler.CompileSource(src)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var out bytes.Buffer
	if _, err := vm.New(vm.WithOutput(&out)).Run(back); err != nil {
		t.Fatalf("run decoded program: %v", err)
	}
	if got := out.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestRoundTripStructure(t *testing.T) {
	p, err := compiler.CompileSource(`
let greeting = "hello"
func shout(s) { return s + "!" }
`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(back.Code) != len(p.Code) {
		t.Fatalf("len(code) = %d, want %d", len(back.Code), len(p.Code))
	}
	for i := range p.Code {
		if back.Code[i] != p.Code[i] {
			t.Errorf("code[%d] = %v, want %v", i, back.Code[i], p.Code[i])
		}
	}
	if len(back.Consts) != len(p.Consts) {
		t.Fatalf("len(consts) = %d, want %d", len(back.Consts), len(p.Consts))
	}
	for i := range p.Consts {
		if p.Consts[i].Kind() == vm.KindBlueprint {
			got, want := back.Consts[i].Blueprint(), p.Consts[i].Blueprint()
			if got.Name != want.Name || len(got.Code) != len(want.Code) {
				t.Errorf("blueprint %d: %s/%d instructions, want %s/%d", i, got.Name, len(got.Code), want.Name, len(want.Code))
			}
			continue
		}
		if !back.Consts[i].Equal(p.Consts[i]) {
			t.Errorf("const %d = %v, want %v", i, back.Consts[i], p.Consts[i])
		}
	}
}

func TestDeterministicEncoding(t *testing.T) {
	p, err := compiler.CompileSource(`let m = {"a": 1, "b": 2}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	first, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("repeated Marshal produced different bytes")
	}
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	p := &vm.Program{Code: []vm.Instruction{{Op: vm.OpHalt}}}
	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Corrupt the magic string inside the CBOR payload.
	data = bytes.Replace(data, []byte(Magic), []byte("BOGUSXX"), 1)
	if _, err := Unmarshal(data); err == nil {
		t.Errorf("Unmarshal accepted corrupted magic")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("not cbor at all")); err == nil {
		t.Errorf("Unmarshal accepted garbage input")
	}
}

func TestMarshalRejectsRuntimeOnlyConstants(t *testing.T) {
	p := &vm.Program{
		Code:   []vm.Instruction{{Op: vm.OpHalt}},
		Consts: []vm.Value{vm.FromArray(vm.NewArray())},
	}
	if _, err := Marshal(p); err == nil {
		t.Errorf("Marshal accepted an array constant")
	}
}

func TestWriteAndReadFile(t *testing.T) {
	p, err := compiler.CompileSource("print 1 + 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	path := filepath.Join(t.TempDir(), "prog.fxi")
	if err := WriteFile(path, p); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var out bytes.Buffer
	if _, err := vm.New(vm.WithOutput(&out)).Run(back); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "3\n" {
		t.Errorf("output = %q, want %q", got, "3\n")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.fxi")); err == nil {
		t.Errorf("ReadFile on a missing file succeeded")
	}
}
