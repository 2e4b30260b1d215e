package config

type Config struct {
	ScenarioInput    string
	ScenarioOutput   string
	GenerateScenario bool
	SceneFile        string
	BackdropPath     string
	OutputVideo      string
	PosterPath       string
	PosterTime       float64
	PreviewPath      string
	TotalDuration    float64
	Width            int
	Height           int
	FPS              int
	Workers          int
	Supersample      int
	AudioPath        string
	Preset           string
	VideoEncoder     string
	Quality          int
	Vignette         float64
	QRURL            string
	Seed             uint64
	Debug            bool
	ShowStats        bool
	BuildVersion     string
}

// FrameParams is what the post-processing chain needs to know about the stream.
type FrameParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Vignette      float64
	Debug         bool
	ScrollExpr    string
}

// Params derives the encoder-facing parameters from the run configuration.
func (c *Config) Params() FrameParams {
	return FrameParams{
		Width:    c.Width,
		Height:   c.Height,
		FPS:      c.FPS,
		Duration: c.TotalDuration,
		Vignette: c.Vignette,
		Debug:    c.Debug,
	}
}

// ApplyPreset returns the frame size for a format preset, or the given size
// when the preset is empty or unknown.
func ApplyPreset(preset string, width, height int) (int, int) {
	switch preset {
	case "16:9":
		return 1280, 720
	case "9:16":
		return 720, 1280
	case "4:5":
		return 1080, 1350
	}
	return width, height
}
