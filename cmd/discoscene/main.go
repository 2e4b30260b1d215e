package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/discoscene/internal/config"
	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/effects"
	"github.com/ivlev/discoscene/internal/engine"
	"github.com/ivlev/discoscene/internal/system"
	"github.com/ivlev/discoscene/internal/video"
)

// Заполняется через -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/backdrop", "output", director.ScenariosDir}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scenarioPtr := flag.String("scenario", "", "Путь к YAML-сценарию прокрутки (latest - самый свежий в scenarios/; пусто - тур по умолчанию)")
	generatePtr := flag.Bool("generate-scenario", false, "Только сгенерировать сценарий и выйти")
	scenarioOutPtr := flag.String("scenario-output", "", "Куда сохранить сгенерированный сценарий (по умолчанию scenarios/)")
	scenePtr := flag.String("scene", "", "YAML с настройками сцены (камера, карусель, свет, атмосфера)")
	backdropPtr := flag.String("backdrop", "", "Афиша на фоне: PDF или изображение (по умолчанию: самый свежий файл в input/backdrop/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	posterPtr := flag.String("poster", "", "Путь к постеру WebP (пусто - не сохранять)")
	posterTimePtr := flag.Float64("poster-time", 3, "Момент для постера и превью (сек)")
	previewPtr := flag.String("preview", "", "Путь к анимированному превью WebP (пусто - не сохранять)")
	durationPtr := flag.Float64("duration", 0, "Общая длительность видео (если 0, берется из сценария или аудио)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	fpsPtr := flag.Int("fps", 30, "FPS")
	workersPtr := flag.Int("workers", 0, "Потоки рендера (0 - по числу ядер с учетом памяти)")
	ssPtr := flag.Int("supersample", 2, "Суперсэмплинг (1 - выкл)")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	audioSyncPtr := flag.Bool("audio-sync", true, "Синхронизировать длительность видео с аудио")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	vignettePtr := flag.Float64("vignette", 0.35, "Сила виньетки 0..1")
	qrPtr := flag.String("qr", "", "URL для QR-кода в углу кадра")
	seedPtr := flag.Uint64("seed", 0, "Seed атмосферы (0 - из файла сцены)")
	debugPtr := flag.Bool("debug", false, "Отладочный оверлей (время, прокрутка)")
	statsPtr := flag.Bool("stats", false, "Отчет о производительности и запись в benchmark.log")
	dumpScenePtr := flag.String("dump-scene", "", "Сохранить итоговые настройки сцены в YAML и выйти")

	flag.Parse()

	width, height := config.ApplyPreset(*presetPtr, *widthPtr, *heightPtr)

	sceneCfg := config.DefaultScene()
	if *scenePtr != "" {
		sc, err := config.LoadScene(*scenePtr)
		if err != nil {
			log.Fatalf("[-] Ошибка файла сцены: %v", err)
		}
		sceneCfg = sc
		fmt.Printf("[*] Настройки сцены: %s\n", *scenePtr)
	}
	if *seedPtr != 0 {
		sceneCfg.Seed = *seedPtr
	}

	if *dumpScenePtr != "" {
		if err := config.WriteScene(sceneCfg, *dumpScenePtr); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		fmt.Printf("[+++] Настройки сцены сохранены: %s\n", *dumpScenePtr)
		return
	}

	scenarioPath := *scenarioPtr
	if scenarioPath == "latest" {
		latest, err := director.FindLatestScenario(director.ScenariosDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		scenarioPath = latest
	}

	backdropPath := *backdropPtr
	if backdropPath == "" && !*generatePtr {
		if latest, err := system.FindLatestBackdrop("input/backdrop"); err == nil {
			backdropPath = latest
			fmt.Printf("[*] Выбрана афиша: %s\n", backdropPath)
		}
	}

	totalDuration := *durationPtr

	// Обработка аудио
	audioPath := *audioPtr
	if audioPath == "" && !*generatePtr {
		if latest, err := system.FindLatestAudio("input/audio"); err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}

	if audioPath != "" && *audioSyncPtr && totalDuration <= 0 {
		audioDur, err := system.GetAudioDuration(audioPath)
		if err == nil {
			totalDuration = audioDur
			fmt.Printf("[*] Длительность видео установлена по аудио: %.2fs\n", totalDuration)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		nameSource := "discoscene"
		if audioPath != "" {
			nameSource = audioPath
		} else if backdropPath != "" {
			nameSource = backdropPath
		}
		baseName := filepath.Base(nameSource)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}

	cfg := &config.Config{
		ScenarioInput:    scenarioPath,
		ScenarioOutput:   *scenarioOutPtr,
		GenerateScenario: *generatePtr,
		SceneFile:        *scenePtr,
		BackdropPath:     backdropPath,
		OutputVideo:      finalOutput,
		PosterPath:       *posterPtr,
		PosterTime:       *posterTimePtr,
		PreviewPath:      *previewPtr,
		TotalDuration:    totalDuration,
		Width:            width,
		Height:           height,
		FPS:              *fpsPtr,
		Workers:          *workersPtr,
		Supersample:      *ssPtr,
		AudioPath:        audioPath,
		Preset:           *presetPtr,
		VideoEncoder:     encoderName,
		Quality:          quality,
		Vignette:         *vignettePtr,
		QRURL:            *qrPtr,
		Seed:             sceneCfg.Seed,
		Debug:            *debugPtr,
		ShowStats:        *statsPtr,
		BuildVersion:     buildVersion,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{Release: system.PutImage}
	eff := &effects.DefaultEffect{}

	project := engine.NewVideoProject(cfg, sceneCfg, ve, eff)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if !cfg.GenerateScenario {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
	}
}
