//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/voxelsplace/plainppm/go/api"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	uint8arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8arr, b)
	return uint8arr
}

// ppm2png(bytes [, format]) converts a P3 image to png (default), bmp or tiff.
func ppm2png(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing ppm bytes")
	}
	format := api.FormatPNG
	if len(args) > 1 && args[1].Type() == js.TypeString {
		f, err := api.FormatFromPath("x." + args[1].String())
		if err != nil {
			return js.ValueOf(err.Error())
		}
		format = f
	}
	out, err := api.PPMTo(bytesFromJS(args[0]), format)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// img2ppm(bytes [, maxval]) converts any registered raster format to P3.
func img2ppm(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing image bytes")
	}
	maxval := uint16(255)
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		m, err := api.MaxvalFromInt(args[1].Int())
		if err != nil {
			return js.ValueOf(err.Error())
		}
		maxval = m
	}
	out, err := api.ImageToPPM(bytesFromJS(args[0]), maxval)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func ppm2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing ppm bytes")
	}
	out, err := api.PPMToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// ppmIdentify returns the stream summary as a JSON string.
func ppmIdentify(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing ppm bytes")
	}
	info, err := api.Identify(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	out, err := json.Marshal(info)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(string(out))
}

func main() {
	js.Global().Set("ppm2png", js.FuncOf(ppm2png))
	js.Global().Set("img2ppm", js.FuncOf(img2ppm))
	js.Global().Set("ppm2glb", js.FuncOf(ppm2glb))
	js.Global().Set("ppmIdentify", js.FuncOf(ppmIdentify))
	select {}
}
