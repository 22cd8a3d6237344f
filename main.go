package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"lumina/api"
	"lumina/app"
	"lumina/config"
	"lumina/seqruntime"
	"lumina/storage"

	_ "github.com/ebitengine/hideconsole"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"
)

const wsAddr = "127.0.0.1:42169"

func main() {
	var showFilePath string
	flag.StringVar(&showFilePath, "file", "", "Show file (.lumshow/.json) to open on launch")
	flag.StringVar(&showFilePath, "f", "", "Show file (.lumshow/.json) to open on launch (shorthand)")
	flag.Parse()

	// Support a positional file argument so double-clicking a .lumshow
	// passes the path through.
	if showFilePath == "" {
		if args := flag.Args(); len(args) > 0 {
			showFilePath = args[0]
		}
	}
	if showFilePath != "" {
		showFilePath = filepath.Clean(showFilePath)
		if _, err := os.Stat(showFilePath); err != nil {
			log.Printf("[MAIN] Show file %s not readable: %v", showFilePath, err)
			showFilePath = ""
		}
	}

	lockPath := storage.DataFile(".lumina.lock")
	lockFile, lockOwned, cleanupLock, err := prepareLock(lockPath)
	if err != nil {
		log.Printf("[MAIN] Could not create lock file: %v", err)
		os.Exit(1)
	}
	_ = lockFile // retained to keep handle open for lifetime
	defer cleanupLock()
	if !lockOwned {
		log.Printf("[MAIN] Another instance appears to be running (lock %s); continuing anyway", lockPath)
	}

	cfg := config.Load()

	seqruntime.Bootstrap(showFilePath)
	stopWatch, err := seqruntime.WatchShowFile()
	if err != nil {
		log.Printf("[MAIN] Show file watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	go func() {
		fmt.Printf("WebSocket API is available at ws://%s/ws\n", wsAddr)
		api.StartWebSocketServer(wsAddr)
	}()

	clipboardOK := false
	if runtime.GOARCH != "wasm" && runtime.GOOS != "js" {
		if err := clipboard.Init(); err != nil {
			log.Printf("[MAIN] Clipboard unavailable: %v", err)
		} else {
			clipboardOK = true
		}
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		fmt.Println("Received shutdown signal. Cleaning up...")
		seqruntime.TriggerAutoSave()
		cleanupLock()
		os.Exit(0)
	}()

	ebiten.SetWindowTitle("Lumina Sequence Editor")
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1600, 900)

	game := app.New(cfg, clipboardOK)
	if err := ebiten.RunGameWithOptions(game, &ebiten.RunGameOptions{
		X11ClassName:    "Lumina Sequence Editor",
		X11InstanceName: "Lumina",
	}); err != nil {
		seqruntime.TriggerAutoSave()
		panic(err)
	}
	seqruntime.TriggerAutoSave()
}

// prepareLock creates the single-instance lock file. owned reports whether
// this process created it; an existing lock is opened but left in place so
// the original owner still removes it.
func prepareLock(lockPath string) (*os.File, bool, func(), error) {
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owned = false
			lockFile, err = os.OpenFile(lockPath, os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, nil, err
			}
		} else {
			return nil, false, nil, err
		}
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if lockFile != nil {
				_ = lockFile.Close()
			}
			if owned {
				os.Remove(lockPath)
			}
		})
	}

	return lockFile, owned, cleanup, nil
}
