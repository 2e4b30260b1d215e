package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/discoscene/internal/analyzer"
	"github.com/ivlev/discoscene/internal/clock"
	"github.com/ivlev/discoscene/internal/config"
	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/effects"
	"github.com/ivlev/discoscene/internal/overlay"
	"github.com/ivlev/discoscene/internal/random"
	"github.com/ivlev/discoscene/internal/raster"
	"github.com/ivlev/discoscene/internal/renderer"
	"github.com/ivlev/discoscene/internal/scene"
	"github.com/ivlev/discoscene/internal/source"
	"github.com/ivlev/discoscene/internal/system"
	"github.com/ivlev/discoscene/internal/video"
)

const (
	previewSeconds = 4.0
	previewFPS     = 10
	previewWidth   = 320
	// Separates the teaser picker's random indexes from the atmosphere's.
	pickerSeedSalt = 0x9e3779b97f4a7c15
)

type VideoProject struct {
	Config  *config.Config
	Scene   scene.Config
	Encoder video.VideoEncoder
	Effect  effects.Effect
	Host    system.HostInfo
}

func NewVideoProject(cfg *config.Config, sceneCfg scene.Config, ve video.VideoEncoder, eff effects.Effect) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Scene:   sceneCfg,
		Encoder: ve,
		Effect:  eff,
		Host:    system.GetHostInfo(),
	}
}

// capture holds the frames kept aside for the poster and the preview.
type capture struct {
	posterFrame  int
	poster       *image.RGBA
	previewStart int
	previewEnd   int
	previewStep  int
	preview      []image.Image
}

func (c *capture) take(i int, img *image.RGBA) {
	if i == c.posterFrame {
		c.poster = cloneRGBA(img)
	}
	if c.previewStep > 0 && i >= c.previewStart && i < c.previewEnd && (i-c.previewStart)%c.previewStep == 0 {
		b := img.Bounds()
		h := b.Dy() * previewWidth / b.Dx()
		small := image.NewRGBA(image.Rect(0, 0, previewWidth, h))
		draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)
		c.preview = append(c.preview, small)
	}
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	cfg := p.Config

	if cfg.GenerateScenario {
		return p.handleGenerateScenario()
	}

	scenario, err := p.loadScenario()
	if err != nil {
		return err
	}

	fmt.Println("--- [PROJECT: DISCO SCENE] ---")
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs | Суперсэмплинг: x%d\n",
		cfg.Width, cfg.Height, cfg.FPS, cfg.TotalDuration, cfg.Supersample)
	fmt.Printf("[*] Хост: %s\n", p.Host)
	fmt.Println("-----------------------------")

	// Сцена и шар
	ball := raster.NewBallAsset(12, 24)
	ball.Load()
	sc, err := scene.Compose(p.Scene, ball)
	if err != nil {
		return fmt.Errorf("ошибка сборки сцены: %w", err)
	}
	// Офлайн-рендер ждет шар заранее, иначе первые кадры вышли бы без него.
	// Scene.Update по-прежнему прячет шар, пока ассет не готов.
	if err := ball.Wait(ctx); err != nil {
		return err
	}

	r := raster.NewRenderer(cfg.Width, cfg.Height, cfg.Supersample, ball, sc.Atmosphere())
	if cfg.BackdropPath != "" {
		img, err := source.LoadBackdrop(cfg.BackdropPath, 150)
		if err != nil {
			log.Printf("[!] Афиша не загружена: %v", err)
		} else {
			// Обрезаем поля печати, оставляя только арт
			cropped, rect, err := analyzer.CropToContent(analyzer.NewContrastDetector(), img, 0.02)
			if err != nil {
				log.Printf("[!] Анализ афиши не удался: %v", err)
			}
			r.Backdrop = cropped
			fmt.Printf("[*] Афиша: %s (область %v)\n", cfg.BackdropPath, rect)
		}
	}

	ov, err := overlay.New(cfg.QRURL, cfg.Height, overlay.NewPicker(random.NewSeeded(p.Scene.Seed^pickerSeedSalt)))
	if err != nil {
		return fmt.Errorf("ошибка оверлея: %w", err)
	}

	// 1. Simulation (single writer of the camera state)
	simStart := time.Now()
	frames := int(cfg.TotalDuration*float64(cfg.FPS) + 0.5)
	if frames < 1 {
		frames = 1
	}
	sess := Simulate(sc, scenario, clock.NewFixedStep(cfg.FPS), frames, cfg.Width, cfg.Height,
		func(st scene.SceneState) scene.Projector { return r.Camera(st) })
	simTime := time.Since(simStart)
	for _, ev := range sess.Events {
		if ev.Kind == scene.Enter {
			fmt.Printf("[>] Кадр %d: курсор над карточкой %s\n", ev.Frame, ev.ID)
		}
	}

	// 2. Render + encode
	params := video.StreamParams{
		FrameParams: cfg.Params(),
		Encoder:     cfg.VideoEncoder,
		Quality:     cfg.Quality,
		AudioPath:   cfg.AudioPath,
	}
	params.Duration = float64(frames) / float64(cfg.FPS)
	params.Filter = p.Effect.GenerateFilter(params.FrameParams)

	shots := p.newCapture(frames)
	renderStart := time.Now()
	if err := p.renderAndEncode(ctx, sess.States, r, ov, params, shots); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	// 3. Poster and preview
	if cfg.PosterPath != "" && shots.poster != nil {
		if err := video.WritePoster(cfg.PosterPath, shots.poster); err != nil {
			log.Printf("[!] Не удалось сохранить постер: %v", err)
		} else {
			fmt.Printf("[+++] Постер: %s\n", cfg.PosterPath)
		}
	}
	if cfg.PreviewPath != "" && len(shots.preview) > 0 {
		if err := video.WritePreview(cfg.PreviewPath, shots.preview, 1000/previewFPS); err != nil {
			log.Printf("[!] Не удалось сохранить превью: %v", err)
		} else {
			fmt.Printf("[+++] Превью: %s\n", cfg.PreviewPath)
		}
	}

	if cfg.ShowStats {
		p.writeStats(frames, time.Since(startTime), simTime, renderTime)
	}
	return nil
}

func (p *VideoProject) loadScenario() (*director.Scenario, error) {
	cfg := p.Config
	var scenario *director.Scenario

	if cfg.ScenarioInput != "" {
		sc, err := director.ReadScenario(cfg.ScenarioInput)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения сценария: %w", err)
		}
		fmt.Printf("[*] Используется сценарий: %s\n", cfg.ScenarioInput)
		scenario = sc
	} else {
		duration := cfg.TotalDuration
		if duration <= 0 {
			duration = 20
		}
		sc, err := director.NewDirector(cfg.Width, cfg.Height).GenerateScenario(duration)
		if err != nil {
			return nil, fmt.Errorf("ошибка генерации сценария: %w", err)
		}
		scenario = sc
	}

	// Длительность из аудио/флага имеет приоритет: растягиваем сценарий под нее
	if cfg.TotalDuration > 0 && cfg.TotalDuration != scenario.Duration {
		fmt.Printf("[*] Сценарий масштабирован (x%.3f): %.2fs -> %.2fs\n",
			cfg.TotalDuration/scenario.Duration, scenario.Duration, cfg.TotalDuration)
		scenario = scenario.Retime(cfg.TotalDuration)
	} else {
		cfg.TotalDuration = scenario.Duration
	}

	p.Effect = pickEffect(p.Effect, scenario, cfg.Debug)
	if cfg.Debug {
		fmt.Printf("[*] Макс. шаг прокрутки за кадр: %.1fpx\n", maxScrollStep(scenario, cfg.FPS))
	}
	return scenario, nil
}

// pickEffect switches to the scenario-aware chain for debug renders.
func pickEffect(current effects.Effect, scenario *director.Scenario, debug bool) effects.Effect {
	if debug {
		return effects.NewScenarioEffect(scenario)
	}
	if current == nil {
		return &effects.DefaultEffect{}
	}
	return current
}

func (p *VideoProject) newCapture(frames int) *capture {
	fps := p.Config.FPS
	c := &capture{posterFrame: -1}
	if p.Config.PosterPath != "" {
		c.posterFrame = clampFrame(int(p.Config.PosterTime*float64(fps)), frames)
	}
	if p.Config.PreviewPath != "" {
		c.previewStart = clampFrame(int(p.Config.PosterTime*float64(fps)), frames)
		c.previewEnd = c.previewStart + int(previewSeconds*float64(fps))
		c.previewStep = fps / previewFPS
		if c.previewStep < 1 {
			c.previewStep = 1
		}
	}
	return c
}

func clampFrame(i, frames int) int {
	if i < 0 {
		return 0
	}
	if i >= frames {
		return frames - 1
	}
	return i
}

// renderAndEncode rasterizes states in parallel and feeds them to the encoder
// in frame order. At most 2×workers frames are in flight.
func (p *VideoProject) renderAndEncode(
	ctx context.Context,
	states []scene.SceneState,
	r *raster.Renderer,
	ov *overlay.Overlay,
	params video.StreamParams,
	shots *capture,
) error {
	n := len(states)
	frameBytes := uint64(r.Width*r.Supersample) * uint64(r.Height*r.Supersample) * 12
	workers := p.Host.RecommendedWorkers(p.Config.Workers, frameBytes)
	if workers > n {
		workers = n
	}
	fmt.Printf("[*] Рендер %d кадров в %d потоков...\n", n, workers)

	rect := image.Rect(0, 0, r.Width, r.Height)
	window := make(chan struct{}, workers*2)
	slots := make([]chan *image.RGBA, n)
	for i := range slots {
		slots[i] = make(chan *image.RGBA, 1)
	}
	out := make(chan *image.RGBA, workers)

	bufPool := sync.Pool{New: func() any { return r.NewBuffer() }}
	var rendered atomic.Int64

	g, gctx := errgroup.WithContext(ctx)

	// Dispatcher: bounded parallel rendering
	g.Go(func() error {
		rg, rctx := errgroup.WithContext(gctx)
		rg.SetLimit(workers)
		for i := range states {
			select {
			case window <- struct{}{}:
			case <-rctx.Done():
				if err := rg.Wait(); err != nil {
					return err
				}
				return rctx.Err()
			}
			rg.Go(func() error {
				if err := rctx.Err(); err != nil {
					return err
				}
				fb := bufPool.Get().(*raster.FrameBuffer)
				dst := system.GetImage(rect)
				r.Render(states[i], fb, dst)
				bufPool.Put(fb)
				ov.Draw(dst, states[i].Tick.Elapsed)
				slots[i] <- dst
				rendered.Add(1)
				return nil
			})
		}
		return rg.Wait()
	})

	// Sequencer: hands frames to the encoder in order
	g.Go(func() error {
		defer close(out)
		step := n / 20
		if step < 1 {
			step = 1
		}
		for i := 0; i < n; i++ {
			var img *image.RGBA
			select {
			case img = <-slots[i]:
			case <-gctx.Done():
				return gctx.Err()
			}
			shots.take(i, img)
			select {
			case out <- img:
			case <-gctx.Done():
				return gctx.Err()
			}
			<-window
			if (i+1)%step == 0 || i+1 == n {
				fmt.Printf("[>] Ready: %d/%d\n", i+1, n)
			}
		}
		return nil
	})

	// Encoder
	g.Go(func() error {
		return p.Encoder.EncodeStream(gctx, out, p.Config.OutputVideo, params)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("ошибка рендера/кодирования (готово %d/%d): %w", rendered.Load(), n, err)
	}
	return nil
}

func (p *VideoProject) writeStats(frames int, total, sim, render time.Duration) {
	cfg := p.Config
	fps := float64(frames) / total.Seconds()
	allocated, reused := system.PoolStats()
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Simulation: %.2fs\n"+
			"Render+Encode: %.2fs\n"+
			"Frames: %d (pool: %d allocated, %d reused)\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		cfg.BuildVersion, p.Host, total.Seconds(), sim.Seconds(), render.Seconds(), frames, allocated, reused, fps,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Frames: %d | %dx%d x%d | Total: %.2fs | Sim: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.OutputVideo),
		frames,
		cfg.Width, cfg.Height, cfg.Supersample,
		total.Seconds(),
		sim.Seconds(),
		render.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

func (p *VideoProject) handleGenerateScenario() error {
	fmt.Println("[*] Режим генерации сценария...")

	duration := p.Config.TotalDuration
	if duration <= 0 {
		duration = 20
	}
	dir := director.NewDirector(p.Config.Width, p.Config.Height)
	scenario, err := dir.GenerateScenario(duration)
	if err != nil {
		return err
	}

	outputPath := p.Config.ScenarioOutput
	if outputPath == "" {
		outputPath = director.GenerateScenarioPath(director.ScenariosDir)
	}

	// Убеждаемся, что директория существует
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	if err := director.WriteScenario(scenario, outputPath); err != nil {
		return err
	}

	fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", outputPath)
	return nil
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}

// Для отладки: максимальный шаг прокрутки за кадр, чтобы видеть резкие скачки в сценарии.
func maxScrollStep(scenario *director.Scenario, fps int) float64 {
	if fps <= 0 || len(scenario.Keyframes) < 2 {
		return 0
	}
	prev := renderer.InterpolateKeyframes(scenario.Keyframes, 0).Scroll
	maxStep := 0.0
	frames := int(scenario.Duration * float64(fps))
	for i := 1; i <= frames; i++ {
		cur := renderer.InterpolateKeyframes(scenario.Keyframes, float64(i)/float64(fps)).Scroll
		d := cur - prev
		if d < 0 {
			d = -d
		}
		if d > maxStep {
			maxStep = d
		}
		prev = cur
	}
	return maxStep
}
