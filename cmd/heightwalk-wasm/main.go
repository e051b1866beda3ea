//go:build js && wasm

// Command heightwalk-wasm exposes the heightmap operations to JavaScript.
// Byte buffers cross the boundary as Uint8Array values.
//
//	heights = generate(size, maxLongAge, maxShortAge, maxGenerations,
//	                   children, longDivergence, shortDivergence, paint)
//	rgba    = to_image(heights)
//	blurred = heightmap_blur(heights, radius)
//	42      = hello()
package main

import (
	"os"
	"syscall/js"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/heightwalk/pkg/pipeline"
	"github.com/matzehuels/heightwalk/pkg/seed"
	"github.com/matzehuels/heightwalk/pkg/walk"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "heightwalk"})

func main() {
	global := js.Global()
	global.Set("generate", js.FuncOf(generate))
	global.Set("to_image", js.FuncOf(toImage))
	global.Set("heightmap_blur", js.FuncOf(heightmapBlur))
	global.Set("hello", js.FuncOf(func(js.Value, []js.Value) any {
		return pipeline.Hello()
	}))
	logger.Info("ready")
	select {}
}

func generate(_ js.Value, args []js.Value) any {
	if len(args) < 8 {
		logger.Error("generate: expected 8 arguments", "got", len(args))
		return js.Null()
	}
	gp := pipeline.GenerateParams{
		Size:                    args[0].Int(),
		MaxLongAge:              args[1].Int(),
		MaxShortAge:             args[2].Int(),
		MaxGenerations:          args[3].Int(),
		Children:                args[4].Int(),
		MaxLongAngleDivergence:  args[5].Float(),
		MaxShortAngleDivergence: args[6].Float(),
		Paint:                   walk.Paint(args[7].Int()),
	}
	p := gp.WalkParams()
	if err := p.Validate(); err != nil {
		logger.Error("generate", "err", err)
		return js.Null()
	}
	if p.Size > pipeline.MaxSize {
		logger.Error("generate: size too large", "size", p.Size, "max", pipeline.MaxSize)
		return js.Null()
	}
	if err := pipeline.ValidateBudget(p); err != nil {
		logger.Error("generate", "err", err)
		return js.Null()
	}
	return toJS(pipeline.Generate(gp, seed.Entropy{}))
}

func toImage(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.Null()
	}
	return toJS(pipeline.ToImage(fromJS(args[0])))
}

func heightmapBlur(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.Null()
	}
	if err := pipeline.ValidateRadius(args[1].Int()); err != nil {
		logger.Error("heightmap_blur", "err", err)
		return js.Null()
	}
	return toJS(pipeline.HeightmapBlur(fromJS(args[0]), args[1].Int()))
}

func fromJS(v js.Value) []byte {
	b := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(b, v)
	return b
}

func toJS(b []byte) js.Value {
	v := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(v, b)
	return v
}
