package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/ivlev/discoscene/internal/config"
)

// StreamParams describes one encode: the frame geometry plus the ffmpeg side.
type StreamParams struct {
	config.FrameParams
	Filter    string
	Encoder   string
	Quality   int
	AudioPath string
}

type VideoEncoder interface {
	EncodeStream(ctx context.Context, frames <-chan *image.RGBA, videoPath string, params StreamParams) error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg subprocess.
type FFmpegEncoder struct {
	// Release, if set, receives every frame once it has been written.
	Release func(*image.RGBA)
}

// EncodeStream writes frames in channel order until the channel is closed.
// The channel is drained even on error so producers never block.
func (e *FFmpegEncoder) EncodeStream(
	ctx context.Context,
	frames <-chan *image.RGBA,
	videoPath string,
	params StreamParams,
) error {
	args := e.buildFFmpegArgs(videoPath, params)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		drain(frames, e.Release)
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		drain(frames, e.Release)
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Запись raw RGBA данных
	var writeErr error
	for img := range frames {
		if writeErr == nil {
			writeErr = e.writeRawRGBA(stdin, img)
		}
		if e.Release != nil {
			e.Release(img)
		}
	}
	stdin.Close()

	waitErr := cmd.Wait()
	if writeErr != nil {
		return fmt.Errorf("write raw error: %w\nLog: %s", writeErr, out.String())
	}
	if waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", waitErr, out.String())
	}
	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(videoPath string, params StreamParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.AudioPath != "" {
		args = append(args, "-i", params.AudioPath, "-map", "0:v", "-map", "1:a")
	}
	if params.Filter != "" {
		args = append(args, "-vf", params.Filter)
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	)

	// Качество в зависимости от энкодера
	switch params.Encoder {
	case "h264_videotoolbox":
		bitrate := params.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	if params.AudioPath != "" {
		args = append(args, "-c:a", "aac", "-b:a", "192k", "-shortest")
	}

	args = append(args, "-movflags", "+faststart", videoPath)
	return args
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func drain(frames <-chan *image.RGBA, release func(*image.RGBA)) {
	for img := range frames {
		if release != nil {
			release(img)
		}
	}
}
