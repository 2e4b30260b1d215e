package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindLatestBackdrop returns the most recent flyer (PDF) or picture in dir.
func FindLatestBackdrop(dir string) (string, error) {
	path, err := findLatest(dir, []string{".pdf", ".png", ".jpg", ".jpeg", ".tga"})
	if err != nil {
		return "", fmt.Errorf("в папке %s не найдено афиш: %w", dir, err)
	}
	return path, nil
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", os.ErrNotExist
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func FindLatestAudio(dir string) (string, error) {
	path, err := findLatest(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"})
	if err != nil {
		return "", fmt.Errorf("в папке %s не найдено аудио-файлов: %w", dir, err)
	}
	return path, nil
}

func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// GetBestH264Encoder выбирает аппаратный энкодер, если ffmpeg его поддерживает.
func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Intel/Linux (VAAPI - требует доп. настройки, пока пропустим или добавим позже)
	// 4. Software (libx264)

	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err == nil {
		for _, enc := range encoders {
			if strings.Contains(string(out), enc.name) {
				return enc.name, enc.args
			}
		}
	}

	return "libx264", ""
}

var (
	filtersOnce sync.Once
	filtersOut  string
)

// CheckFilterSupport сообщает, собран ли ffmpeg с указанным фильтром.
func CheckFilterSupport(name string) bool {
	filtersOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput()
		if err == nil {
			filtersOut = string(out)
		}
	})
	for _, line := range strings.Split(filtersOut, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
