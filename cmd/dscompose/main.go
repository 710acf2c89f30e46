// Command dscompose composes synthetic dual-screen frames through the
// renderer pipeline and saves the last one as a PNG.
//
// A producer goroutine fills frames the way an emulation thread would and
// publishes them through a FrameExchange; the renderer composes the newest
// frame on the selected backend. With -compare every frame is composed on
// both schedulers instead and the outputs are checked for bit equality.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/dualscreen"
	_ "github.com/gogpu/dualscreen/gpu" // enable GPU composition
	"github.com/gogpu/dualscreen/internal/synth"
)

type config struct {
	backend dualscreen.Backend
	scene   string
	seed    uint64
	frames  int
	fps     int
	workers int
	scale   int
	output  string
	compare bool
	label   bool
}

func main() {
	var (
		backendName = flag.String("backend", "auto", "compositing backend: auto, cpu or accel")
		scene       = flag.String("scene", "demo", "frame source: demo or random")
		seed        = flag.Uint64("seed", 1, "seed of the random scene")
		frames      = flag.Int("frames", 60, "number of frames to produce")
		fps         = flag.Int("fps", 0, "producer frame rate (0 = as fast as possible)")
		workers     = flag.Int("workers", 0, "CPU scheduler goroutines (0 = GOMAXPROCS)")
		scale       = flag.Int("scale", 2, "PNG upscaling factor")
		output      = flag.String("output", "dscompose.png", "output file (empty to skip)")
		compare     = flag.Bool("compare", false, "compare the accelerator with the CPU scheduler on every frame")
		label       = flag.Bool("label", true, "draw the frame label onto the PNG")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	dualscreen.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	b, err := dualscreen.ParseBackend(*backendName)
	if err != nil {
		log.Fatalf("Invalid -backend: %v", err)
	}
	if *scene != "demo" && *scene != "random" {
		log.Fatalf("Invalid -scene %q: want demo or random", *scene)
	}
	if *frames < 1 {
		log.Fatalf("Invalid -frames %d: want at least 1", *frames)
	}

	cfg := config{
		backend: b, scene: *scene, seed: *seed, frames: *frames, fps: *fps,
		workers: *workers, scale: *scale, output: *output, compare: *compare, label: *label,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.compare {
		err = runCompare(ctx, cfg)
	} else {
		err = run(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("dscompose: %v", err)
	}
}

// fill writes frame t of the selected scene.
func fill(cfg config, f *dualscreen.Frame, t int) {
	if cfg.scene == "random" {
		synth.Random(f, cfg.seed+uint64(t)) //nolint:gosec // t is non-negative
		return
	}
	synth.Demo(f, t)
}

func run(ctx context.Context, cfg config) error {
	comp := dualscreen.NewCompositor(dualscreen.WithBackend(cfg.backend), dualscreen.WithWorkers(cfg.workers))
	defer comp.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	final := uint64(cfg.frames) //nolint:gosec // validated positive
	last := dualscreen.NewOutput()
	presenter := dualscreen.PresenterFunc(func(out *dualscreen.Output) error {
		copy(last.Pix, out.Pix)
		last.Index = out.Index
		if out.Index == final {
			cancel()
		}
		return nil
	})

	ex := dualscreen.NewFrameExchange()
	r := dualscreen.NewRenderer(comp, ex, presenter)

	start := time.Now()
	go produce(ctx, cfg, ex, r)

	err := r.Run(ctx)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if last.Index != final {
		return fmt.Errorf("interrupted after frame %d of %d", last.Index, final)
	}

	report(cfg, r.Frames(), elapsed)
	if cfg.output == "" {
		return nil
	}
	return save(cfg, last)
}

// produce publishes cfg.frames frames, paced at cfg.fps when set.
func produce(ctx context.Context, cfg config, ex *dualscreen.FrameExchange, r *dualscreen.Renderer) {
	var tick <-chan time.Time
	if cfg.fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.fps))
		defer ticker.Stop()
		tick = ticker.C
	}
	for t := range cfg.frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return
		}
		fill(cfg, ex.Current(), t)
		ex.Publish()
		r.FrameDone()
	}
}

func report(cfg config, presented uint64, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	secs := elapsed.Seconds()
	pixels := presented * dualscreen.OutputWidth * dualscreen.OutputHeight
	p.Printf("%d frames produced, %d presented in %v (%.1f frames/s, %d pixels/s)\n",
		cfg.frames, presented, elapsed.Round(time.Millisecond),
		float64(presented)/secs, int64(float64(pixels)/secs))
}

func save(cfg config, out *dualscreen.Output) error {
	img := out.Scaled(cfg.scale)
	if cfg.label {
		if err := drawLabel(img, fmt.Sprintf("%s #%d (%s)", cfg.scene, out.Index, cfg.backend)); err != nil {
			return err
		}
	}
	file, err := os.Create(cfg.output)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode %s: %w", cfg.output, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	log.Printf("Frame %d saved to %s (%dx%d)\n", out.Index, cfg.output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// runCompare composes every frame on the CPU scheduler and on the
// accelerator and stops at the first differing pixel.
func runCompare(ctx context.Context, cfg config) error {
	comp := dualscreen.NewCompositor(dualscreen.WithWorkers(cfg.workers))
	defer comp.Close()

	a := dualscreen.RegisteredAccelerator()
	if a == nil {
		return errors.New("no accelerator registered")
	}

	f := dualscreen.NewFrame()
	cpu := dualscreen.NewOutput()
	accel := dualscreen.NewOutput()
	start := time.Now()
	for t := range cfg.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		fill(cfg, f, t)
		f.Index = uint64(t + 1) //nolint:gosec // t is non-negative
		if err := comp.ComposeCPU(f, cpu); err != nil {
			return err
		}
		if err := comp.ComposeAccelerated(f, accel); err != nil {
			return fmt.Errorf("%s: %w", a.Name(), err)
		}
		if x, y, differ := accel.FirstMismatch(cpu); differ {
			return fmt.Errorf("frame %d differs at (%d, %d): %s %+v, cpu %+v",
				f.Index, x, y, a.Name(), accel.At(x, y), cpu.At(x, y))
		}
	}

	p := message.NewPrinter(language.English)
	p.Printf("%d frames bit-identical on cpu and %s in %v\n",
		cfg.frames, a.Name(), time.Since(start).Round(time.Millisecond))
	if cfg.output == "" {
		return nil
	}
	return save(cfg, accel)
}
