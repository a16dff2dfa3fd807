package api

import (
	"bytes"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/plainppm/go/ppm"
)

// PPMToGLB takes PPM bytes and returns a .glb holding a single quad
// textured with the image. The longer side of the quad is one unit.
func PPMToGLB(ppmBytes []byte) ([]byte, error) {
	img, err := DecodeBytes(ppmBytes)
	if err != nil {
		return nil, err
	}
	return ImageToGLB(img)
}

// ImageToGLB builds the textured quad for a decoded image.
func ImageToGLB(img *ppm.Image) ([]byte, error) {
	var texture bytes.Buffer
	if err := png.Encode(&texture, img.ToImage()); err != nil {
		return nil, err
	}

	d := img.Header.Dimensions()
	sx, sy := float32(1), float32(1)
	if d.Width > d.Height {
		sy = float32(d.Height) / float32(d.Width)
	} else if d.Height > d.Width {
		sx = float32(d.Width) / float32(d.Height)
	}
	positions := [][3]float32{{0, 0, 0}, {sx, 0, 0}, {sx, sy, 0}, {0, sy, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	// glTF texture space starts at the top-left corner, PPM row 0.
	uvs := [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "PPM -> GLB"
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uvAccessor := modeler.WriteTextureCoord(doc, uvs)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	imageIdx, err := modeler.WriteImage(doc, "ppm", "image/png", &texture)
	if err != nil {
		return nil, err
	}

	// Nearest filtering keeps individual pixels crisp.
	doc.Samplers = []*gltf.Sampler{{MagFilter: gltf.MagNearest, MinFilter: gltf.MinNearest}}
	doc.Textures = []*gltf.Texture{{Sampler: gltf.Index(0), Source: gltf.Index(int(imageIdx))}}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor:  &[4]float64{1, 1, 1, 1},
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
		MetallicFactor:   gltf.Float(0),
		RoughnessFactor:  gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "PPMImage",
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
		DoubleSided:          true,
	}}
	prim := &gltf.Primitive{
		Attributes: gltf.PrimitiveAttributes{
			gltf.POSITION:   int(posAccessor),
			gltf.NORMAL:     int(normalAccessor),
			gltf.TEXCOORD_0: int(uvAccessor),
		},
		Indices:  gltf.Index(int(indicesAccessor)),
		Material: gltf.Index(0),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "ImageQuad", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	ppm.Logger().Debug("api: built glb", "header", img.Header.String(), "bytes", out.Len())
	return out.Bytes(), nil
}
