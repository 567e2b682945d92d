package parser

import (
	"github.com/gogpu/reshadefx/fx"
	"github.com/gogpu/reshadefx/lexer"
)

// recorder is a code generator that hands out ids and remembers what it was
// asked to do.
type recorder struct {
	fx.Context

	calls     map[string]int
	variables []string
	binaryOps []lexer.TokenKind
	entries   []string
	depth     int
}

func newRecorder() *recorder {
	return &recorder{Context: fx.NewContext(), calls: make(map[string]int)}
}

func (r *recorder) record(name string) fx.ID {
	r.calls[name]++
	return r.MakeID()
}

func (r *recorder) WriteResult(m *fx.Module) { *m = r.Module }

func (r *recorder) DefineStruct(_ lexer.Location, info *fx.StructInfo) fx.ID {
	info.Definition = r.record("DefineStruct")
	r.Structs = append(r.Structs, *info)
	return info.Definition
}

func (r *recorder) DefineTexture(_ lexer.Location, info *fx.TextureInfo) fx.ID {
	info.ID = r.record("DefineTexture")
	r.Module.Textures = append(r.Module.Textures, *info)
	return info.ID
}

func (r *recorder) DefineSampler(_ lexer.Location, info *fx.SamplerInfo) fx.ID {
	info.ID = r.record("DefineSampler")
	r.Module.Samplers = append(r.Module.Samplers, *info)
	return info.ID
}

func (r *recorder) DefineUniform(_ lexer.Location, info *fx.UniformInfo) fx.ID {
	r.Module.Uniforms = append(r.Module.Uniforms, *info)
	return r.record("DefineUniform")
}

func (r *recorder) DefineVariable(_ lexer.Location, _ fx.Type, name string, _ bool, _ fx.ID) fx.ID {
	r.variables = append(r.variables, name)
	return r.record("DefineVariable")
}

func (r *recorder) DefineFunction(_ lexer.Location, info *fx.FunctionInfo) fx.ID {
	info.Definition = r.record("DefineFunction")
	for i := range info.Parameters {
		info.Parameters[i].Definition = r.MakeID()
	}
	fn := *info
	r.Functions = append(r.Functions, &fn)
	r.depth++
	return info.Definition
}

func (r *recorder) DefineEntryPoint(fn *fx.FunctionInfo, isPixelShader bool) {
	r.record("DefineEntryPoint")
	r.entries = append(r.entries, fn.UniqueName)
	r.Module.EntryPoints = append(r.Module.EntryPoints, fx.EntryPoint{Name: fn.UniqueName, IsPixelShader: isPixelShader})
}

func (r *recorder) EmitLoad(exp *fx.Expression, _ bool) fx.ID {
	if exp.IsConstant {
		return r.record("EmitConstant")
	}
	if len(exp.Chain) == 0 && !exp.IsLvalue {
		return exp.Base
	}
	return r.record("EmitLoad")
}

func (r *recorder) EmitStore(*fx.Expression, fx.ID) { r.record("EmitStore") }

func (r *recorder) EmitConstant(fx.Type, fx.Constant) fx.ID { return r.record("EmitConstant") }

func (r *recorder) EmitUnaryOp(lexer.Location, lexer.TokenKind, fx.Type, fx.ID) fx.ID {
	return r.record("EmitUnaryOp")
}

func (r *recorder) EmitBinaryOp(_ lexer.Location, op lexer.TokenKind, _, _ fx.Type, _, _ fx.ID) fx.ID {
	r.binaryOps = append(r.binaryOps, op)
	return r.record("EmitBinaryOp")
}

func (r *recorder) EmitTernaryOp(lexer.Location, lexer.TokenKind, fx.Type, fx.ID, fx.ID, fx.ID) fx.ID {
	return r.record("EmitTernaryOp")
}

func (r *recorder) EmitCall(lexer.Location, fx.ID, fx.Type, []fx.Expression) fx.ID {
	return r.record("EmitCall")
}

func (r *recorder) EmitCallIntrinsic(lexer.Location, fx.Intrinsic, fx.Type, []fx.Expression) fx.ID {
	return r.record("EmitCallIntrinsic")
}

func (r *recorder) EmitConstruct(lexer.Location, fx.Type, []fx.Expression) fx.ID {
	return r.record("EmitConstruct")
}

func (r *recorder) EmitIf(lexer.Location, fx.ID, fx.ID, fx.ID, fx.ID, uint32) { r.record("EmitIf") }

func (r *recorder) EmitPhi(lexer.Location, fx.ID, fx.ID, fx.ID, fx.ID, fx.ID, fx.ID, fx.Type) fx.ID {
	return r.record("EmitPhi")
}

func (r *recorder) EmitLoop(lexer.Location, fx.ID, fx.ID, fx.ID, fx.ID, fx.ID, fx.ID, uint32) {
	r.record("EmitLoop")
}

func (r *recorder) EmitSwitch(lexer.Location, fx.ID, fx.ID, fx.ID, []fx.ID, uint32) {
	r.record("EmitSwitch")
}

func (r *recorder) SetBlock(id fx.ID) fx.ID {
	r.LastBlock = r.CurrentBlock
	r.CurrentBlock = id
	return r.LastBlock
}

func (r *recorder) EnterBlock(id fx.ID) { r.SetBlock(id) }

func (r *recorder) leave() fx.ID {
	if r.CurrentBlock == 0 {
		return r.LastBlock
	}
	return r.SetBlock(0)
}

func (r *recorder) LeaveBlockAndKill() fx.ID                { return r.leave() }
func (r *recorder) LeaveBlockAndReturn(fx.ID) fx.ID         { return r.leave() }
func (r *recorder) LeaveBlockAndSwitch(fx.ID, fx.ID) fx.ID  { return r.leave() }
func (r *recorder) LeaveBlockAndBranch(fx.ID, uint32) fx.ID { return r.leave() }
func (r *recorder) LeaveBlockAndBranchConditional(fx.ID, fx.ID, fx.ID) fx.ID {
	return r.leave()
}

func (r *recorder) LeaveFunction() {
	r.record("LeaveFunction")
	r.depth--
}

var _ fx.Codegen = (*recorder)(nil)
