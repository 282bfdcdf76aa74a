// Package script drives a datapath core from Starlark programs.
//
// The predeclared environment exposes the register file and the ALU:
//
//	write(addr, value)
//	read(addr)                       -> int
//	read_pair(a, b)                  -> (int, int)
//	execute(a, b, op)                -> struct(result, carry, zero, even, flags)
//	step(op, a, b, dest=-1, writeback=True) -> struct; no write-back without dest
//	clear()
//	dump()                           -> [(index, value), ...]
//
// Opcodes are given by name ("ADD", or the predeclared ADD constant) or by
// their 3-bit value.
package script

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sarchlab/dp8sim/emu"
	"github.com/sarchlab/dp8sim/insts"
	"github.com/sarchlab/dp8sim/timing/core"
)

// Demo walks through the ALU, the register file and their combination.
//
//go:embed demo.star
var Demo string

const ctxKey = "dp8sim.ctx"

// Runner executes scripts against one core.
type Runner struct {
	core *core.Core
	out  io.Writer
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithOutput sets where print() writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// NewRunner creates a Runner bound to c.
func NewRunner(c *core.Core, opts ...Option) *Runner {
	r := &Runner{
		core: c,
		out:  os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RunFile executes the Starlark file at path.
func (r *Runner) RunFile(ctx context.Context, path string) (starlark.StringDict, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}

	return r.Exec(ctx, path, src)
}

// Exec executes src, naming it filename in error messages. Cancelling
// ctx stops the script at its next step.
func (r *Runner) Exec(ctx context.Context, filename string, src interface{}) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(r.out, msg)
		},
	}
	thread.SetLocal(ctxKey, ctx)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	tlog.V("script").Printw("exec", "file", filename)

	opts := syntax.FileOptions{}

	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, r.predeclared())
	if err != nil {
		return globals, errors.Wrap(err, "script %v", filename)
	}

	return globals, nil
}

func (r *Runner) predeclared() starlark.StringDict {
	env := starlark.StringDict{
		"write":     starlark.NewBuiltin("write", r.write),
		"read":      starlark.NewBuiltin("read", r.read),
		"read_pair": starlark.NewBuiltin("read_pair", r.readPair),
		"execute":   starlark.NewBuiltin("execute", r.execute),
		"step":      starlark.NewBuiltin("step", r.step),
		"clear":     starlark.NewBuiltin("clear", r.clear),
		"dump":      starlark.NewBuiltin("dump", r.dump),
	}

	for _, op := range insts.Ops() {
		env[op.String()] = starlark.String(op.String())
	}

	return env
}

func (r *Runner) write(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr, value int
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "addr", &addr, "value", &value); err != nil {
		return nil, err
	}

	a, err := toByte("addr", addr)
	if err != nil {
		return nil, err
	}
	v, err := toByte("value", value)
	if err != nil {
		return nil, err
	}

	if err := r.core.Write(threadContext(thread), a, v); err != nil {
		return nil, err
	}

	return starlark.None, nil
}

func (r *Runner) read(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr int
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "addr", &addr); err != nil {
		return nil, err
	}

	a, err := toByte("addr", addr)
	if err != nil {
		return nil, err
	}

	v, err := r.core.Read(threadContext(thread), a)
	if err != nil {
		return nil, err
	}

	return starlark.MakeInt(int(v)), nil
}

func (r *Runner) readPair(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addrA, addrB int
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "a", &addrA, "b", &addrB); err != nil {
		return nil, err
	}

	a, err := toByte("a", addrA)
	if err != nil {
		return nil, err
	}
	b, err := toByte("b", addrB)
	if err != nil {
		return nil, err
	}

	va, vb, err := r.core.ReadPair(threadContext(thread), a, b)
	if err != nil {
		return nil, err
	}

	return starlark.Tuple{starlark.MakeInt(int(va)), starlark.MakeInt(int(vb))}, nil
}

func (r *Runner) execute(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		x, y int
		opv  starlark.Value
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "a", &x, "b", &y, "op", &opv); err != nil {
		return nil, err
	}

	a, err := toByte("a", x)
	if err != nil {
		return nil, err
	}
	b, err := toByte("b", y)
	if err != nil {
		return nil, err
	}
	op, err := toOp(opv)
	if err != nil {
		return nil, err
	}

	res, err := r.core.Execute(threadContext(thread), a, b, op)
	if err != nil {
		return nil, err
	}

	return resultValue(res), nil
}

func (r *Runner) step(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		opv              starlark.Value
		srcA, srcB int
		dest       = -1
		writeBack  = true
	)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
		"op", &opv, "a", &srcA, "b", &srcB, "dest?", &dest, "writeback?", &writeBack); err != nil {
		return nil, err
	}

	op, err := toOp(opv)
	if err != nil {
		return nil, err
	}

	in := core.Instr{Op: op, WriteBack: writeBack && dest >= 0}
	if in.SrcA, err = toByte("a", srcA); err != nil {
		return nil, err
	}
	if in.SrcB, err = toByte("b", srcB); err != nil {
		return nil, err
	}
	if in.WriteBack {
		if in.Dest, err = toByte("dest", dest); err != nil {
			return nil, err
		}
	}

	res, err := r.core.Step(threadContext(thread), in)
	if err != nil {
		return nil, err
	}

	return resultValue(res), nil
}

func (r *Runner) clear(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}

	if err := r.core.Clear(); err != nil {
		return nil, err
	}

	return starlark.None, nil
}

func (r *Runner) dump(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
		return nil, err
	}

	cells, err := r.core.Dump()
	if err != nil {
		return nil, err
	}

	list := make([]starlark.Value, len(cells))
	for i, c := range cells {
		list[i] = starlark.Tuple{starlark.MakeInt(int(c.Index)), starlark.MakeInt(int(c.Value))}
	}

	return starlark.NewList(list), nil
}

func resultValue(res emu.Result) starlark.Value {
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"result": starlark.MakeInt(int(res.Value)),
		"carry":  starlark.Bool(res.Flags.Carry()),
		"zero":   starlark.Bool(res.Flags.Zero()),
		"even":   starlark.Bool(res.Flags.Even()),
		"flags":  starlark.String(res.Flags.String()),
	})
}

func toByte(name string, v int) (uint8, error) {
	if v < 0 || v > 0xFF {
		return 0, errors.New("%s out of 8-bit range: %d", name, v)
	}
	return uint8(v), nil
}

func toOp(v starlark.Value) (insts.Op, error) {
	switch v := v.(type) {
	case starlark.String:
		return insts.ParseOp(string(v))
	case starlark.Int:
		n, ok := v.Int64()
		if !ok || n < 0 || n > 0xFF {
			return 0, insts.ErrInvalidOpcode
		}
		inst, err := insts.NewDecoder().Decode(uint8(n))
		return inst.Op, err
	default:
		return 0, errors.New("op must be a string or int, got %s", v.Type())
	}
}

func threadContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(ctxKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}
