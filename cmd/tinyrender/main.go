// tinyrender - offline software renderer
// Renders an OBJ or glTF model with a choice of shaders, including a
// two-pass shadow-mapped render, and writes the image and z-buffer.
//
// A scene file (-scene) supplies any of the settings below; flags given on
// the command line take precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Raunak-S/tinyrender/pkg/math3d"
	"github.com/Raunak-S/tinyrender/pkg/models"
	"github.com/Raunak-S/tinyrender/pkg/render"
)

var (
	scenePath   = flag.String("scene", "", "YAML scene file")
	previewFlag = flag.Bool("preview", false, "Show the final image in the terminal")
	quiet       = flag.Bool("quiet", false, "Disable the progress bar")
	verbose     = flag.Bool("v", false, "Debug logging")
)

// flagScene collects the scene overrides from the command line.
var flagScene Scene

func init() {
	flag.IntVar(&flagScene.Width, "width", 0, "Image width (default 800)")
	flag.IntVar(&flagScene.Height, "height", 0, "Image height (default 800)")
	flag.Float64Var(&flagScene.Depth, "depth", 0, "Depth range (default 2000)")
	flag.Var(vecFlag{&flagScene.Eye}, "eye", "Eye position x,y,z (default 1,1,4)")
	flag.Var(vecFlag{&flagScene.Center}, "center", "Look-at point x,y,z (default 0,0,0)")
	flag.Var(vecFlag{&flagScene.Up}, "up", "Up vector x,y,z (default 0,1,0)")
	flag.Var(vecFlag{&flagScene.Light}, "light", "Direction toward the light x,y,z (default 1,1,0)")
	flag.StringVar(&flagScene.Shader, "shader", "", "flat, gouraud, phong, tangent, depth or shadow (default shadow)")
	flag.Var(floatPtrFlag{&flagScene.AmbientFloor}, "ambient", "Fraction of light kept in shadow (default 0.3)")
	flag.Var(floatPtrFlag{&flagScene.ShadowBias}, "bias", "Shadow depth bias (default 10)")
	flag.StringVar(&flagScene.Background, "bg", "", "Background color r,g,b (default 0,0,0)")
	flag.Float64Var(&flagScene.Yaw, "yaw", 0, "Model yaw in degrees")
	flag.Var(boolPtrFlag{&flagScene.Normalize}, "normalize", "Fit the model into the unit cube")
	flag.Var(boolPtrFlag{&flagScene.Wireframe}, "wireframe", "Overlay face edges")
	flag.Var(boolPtrFlag{&flagScene.Bounds}, "bounds", "Overlay the model's bounding box")
	flag.Var(boolPtrFlag{&flagScene.Axes}, "axes", "Overlay the world axes at the origin")
	flag.StringVar(&flagScene.Output, "o", "", "Output image, format by extension (default output.tga)")
	flag.StringVar(&flagScene.ZBuffer, "z", "", "Z-buffer image (default zbuffer.tga)")
	flag.StringVar(&flagScene.ShadowMap, "shadow-map", "", "Light-pass depth image (shadow shader only)")
	flag.IntVar(&flagScene.Frames, "frames", 0, "Render an orbit of N frames around the center")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tinyrender - offline software renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tinyrender [options] <model.obj|model.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Texture maps are found next to the model: <name>_diffuse.tga,\n")
		fmt.Fprintf(os.Stderr, "<name>_nm.tga, <name>_nm_tangent.tga and <name>_spec.tga.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	scene := Defaults()
	if *scenePath != "" {
		file, err := LoadScene(*scenePath)
		if err != nil {
			return err
		}
		scene = Resolve(scene, file)
	}
	over := flagScene
	if flag.NArg() > 0 {
		over.Model = flag.Arg(0)
	}
	scene = Resolve(scene, over)
	if err := scene.Validate(); err != nil {
		return err
	}

	loader := models.NewLoader()
	loader.Logger = logger
	mesh, material, err := loader.Load(scene.Model)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if enabled(scene.Normalize) {
		mesh.Normalize()
	}
	if scene.Yaw != 0 {
		mesh.Transform(math3d.RotateY(scene.Yaw * math.Pi / 180))
	}
	logger.Info("loaded model", "path", scene.Model, "vertices", mesh.VertexCount(), "faces", mesh.FaceCount())

	cfg := scene.RenderConfig()
	variant := scene.Variant()
	cameras := orbitCameras(scene.Camera(), scene.Frames)

	p := render.NewPipeline(cfg)
	var bar *progressbar.ProgressBar
	if !*quiet {
		passes := 1
		if variant == render.VariantShadow {
			passes = 2
		}
		bar = progressbar.Default(int64(mesh.FaceCount()*passes*len(cameras)), "rendering")
		defer bar.Close()
		p.Progress = bar
	}

	var last render.Frame
	for i, cam := range cameras {
		if err := ctx.Err(); err != nil {
			return err
		}
		out := scene
		if len(cameras) > 1 {
			out.Output = frameName(scene.Output, i)
			out.ZBuffer = frameName(scene.ZBuffer, i)
			if scene.ShadowMap != "" {
				out.ShadowMap = frameName(scene.ShadowMap, i)
			}
		}

		start := time.Now()
		frame, err := renderFrame(p, mesh, material, cam, out, variant)
		if err != nil {
			return err
		}
		logger.Debug("rendered frame",
			"frame", i,
			"triangles", frame.Stats.Triangles,
			"degenerate", frame.Stats.Degenerate,
			"written", frame.Stats.Written,
			"elapsed", time.Since(start))

		if err := writeFrame(frame, out, cfg, mesh); err != nil {
			return err
		}
		logger.Info("wrote image", "path", out.Output)
		last = frame
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if *previewFlag {
		return preview(ctx, last.Image)
	}
	return nil
}

// renderFrame runs the scene's passes for one eye position and writes the
// light-pass depth when requested.
func renderFrame(p *render.Pipeline, mesh *models.Mesh, material *models.Material, cam render.Camera, s Scene, v render.Variant) (render.Frame, error) {
	if v != render.VariantShadow {
		return p.Render(mesh, material, cam, s.LightDir(), v)
	}
	sf, err := p.RenderShadowed(mesh, material, cam, s.LightDir())
	if err != nil {
		return render.Frame{}, err
	}
	if s.ShadowMap != "" {
		if err := sf.Light.Depth.Save(s.ShadowMap, p.Config.Depth); err != nil {
			return render.Frame{}, fmt.Errorf("write shadow map: %w", err)
		}
	}
	return sf.Eye, nil
}

func writeFrame(f render.Frame, s Scene, cfg render.Config, mesh *models.Mesh) error {
	drawOverlays(f, s, mesh)
	if err := f.Image.Save(s.Output); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if s.ZBuffer != "" {
		if err := f.Depth.Save(s.ZBuffer, cfg.Depth); err != nil {
			return fmt.Errorf("write z-buffer: %w", err)
		}
	}
	return nil
}

// drawOverlays draws the scene's unshaded overlays onto the frame.
func drawOverlays(f render.Frame, s Scene, mesh *models.Mesh) {
	w := render.NewWireframe(f.Transforms, f.Image)
	if enabled(s.Wireframe) {
		w.DrawModel(mesh, render.ColorGreen)
	}
	if enabled(s.Bounds) {
		w.DrawBounds(mesh.Bounds, render.ColorGray)
	}
	if enabled(s.Axes) {
		w.DrawAxes(axisLength(mesh.Bounds))
	}
}

// axisLength is the largest extent of b, or 1 for an empty or flat box.
func axisLength(b math3d.AABB) float64 {
	if b.IsEmpty() {
		return 1
	}
	size := b.Size()
	if l := max(size.X, size.Y, size.Z); l > 0 {
		return l
	}
	return 1
}

// orbitCameras returns one camera per frame, the eye eased around the Up
// axis through the center.
func orbitCameras(cam render.Camera, frames int) []render.Camera {
	angles := orbitAngles(frames)
	cams := make([]render.Camera, len(angles))
	for i, a := range angles {
		cams[i] = cam.Orbit(a)
	}
	return cams
}
