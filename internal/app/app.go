package app

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/nespocket/nespocket/internal/cartridge"
	"github.com/nespocket/nespocket/internal/controller"
	"github.com/nespocket/nespocket/internal/graphics"
)

// Application wires the config, graphics backend, and emulator into the
// host's frame loop: poll input, step one emulated frame, present it.
type Application struct {
	config *Config

	graphicsBackend graphics.Backend
	window          graphics.Window

	emulator  *Emulator
	cartridge *cartridge.Cartridge
	romPath   string

	running     bool
	paused      bool
	initialized bool
	headless    bool

	buttonState [8]bool // indexed by controller.A..controller.Right's bit position

	frameCount  uint64
	startTime   time.Time
	lastFPSTime time.Time
	framesAtFPS uint64
	currentFPS  float64
}

// ApplicationError reports which component/operation failed during startup.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Operation, e.Err)
}
func (e *ApplicationError) Unwrap() error { return e.Err }

// NewApplication creates an Application using the config at configPath
// (written with defaults if it doesn't exist yet).
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode is NewApplication with an explicit headless override.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	a := &Application{
		config:      NewConfig(),
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	if configPath != "" {
		if err := a.config.LoadFromFile(configPath); err != nil {
			log.Printf("could not load config from %s, using defaults: %v", configPath, err)
		}
	}

	if err := a.initializeGraphics(headless); err != nil {
		return nil, &ApplicationError{Component: "graphics", Operation: "initialize", Err: err}
	}

	a.initialized = true
	return a, nil
}

func (a *Application) initializeGraphics(headless bool) error {
	backendType := graphics.BackendEbitengine
	if headless || a.config.Video.Backend == "headless" {
		backendType = graphics.BackendHeadless
	}

	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("create graphics backend: %w", err)
	}

	gcfg := graphics.Config{
		WindowTitle:  "nespocket",
		WindowWidth:  a.config.Window.Width,
		WindowHeight: a.config.Window.Height,
		Fullscreen:   a.config.Window.Fullscreen,
		VSync:        a.config.Video.VSync,
		Filter:       a.config.Video.Filter,
		AspectRatio:  a.config.Video.AspectRatio,
		Headless:     backendType == graphics.BackendHeadless,
	}

	if err := backend.Initialize(gcfg); err != nil {
		if backendType == graphics.BackendEbitengine {
			log.Printf("ebitengine backend failed (%v), falling back to headless", err)
			backend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("create fallback headless backend: %w", err)
			}
			gcfg.Headless = true
			if err := backend.Initialize(gcfg); err != nil {
				return fmt.Errorf("initialize fallback headless backend: %w", err)
			}
		} else {
			return fmt.Errorf("initialize graphics backend: %w", err)
		}
	}
	a.graphicsBackend = backend

	if !backend.IsHeadless() {
		window, err := backend.CreateWindow(gcfg.WindowTitle, gcfg.WindowWidth, gcfg.WindowHeight)
		if err != nil {
			return fmt.Errorf("create window: %w", err)
		}
		a.window = window
	}
	return nil
}

// LoadROM loads an iNES cartridge and wires a fresh Emulator to it.
func (a *Application) LoadROM(romPath string) error {
	if !a.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.Load(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	a.cartridge = cart
	a.romPath = romPath
	a.emulator = NewEmulator(cart, a.config)

	if a.window != nil {
		a.window.SetTitle(fmt.Sprintf("nespocket - %s", filepath.Base(romPath)))
	}
	return nil
}

// Run starts the host frame loop and blocks until it ends. With an
// ebitengine window the loop ends when the window is closed; Stop does not
// end it. Without one, the loop ends when Stop is called or the window
// reports it should close.
func (a *Application) Run() error {
	if !a.initialized {
		return errors.New("application not initialized")
	}
	a.running = true
	a.startTime = time.Now()
	a.lastFPSTime = time.Now()

	if ew, ok := graphics.AsEbitengineWindow(a.window); ok {
		ew.SetEmulatorUpdateFunc(func() error {
			a.processInput()
			a.tick()
			if a.window.ShouldClose() {
				a.Stop()
			}
			return nil
		})
		return ew.Run()
	}

	for a.running {
		a.processInput()
		a.tick()
		if a.window != nil && a.window.ShouldClose() {
			a.Stop()
		}
		time.Sleep(16 * time.Millisecond)
	}
	return nil
}

// tick advances the emulator by one frame (if a ROM is loaded and not
// paused) and presents the result.
func (a *Application) tick() {
	if a.paused || a.emulator == nil {
		return
	}
	fb := a.emulator.StepFrame()
	if a.window != nil {
		if err := a.window.RenderFrame(*fb); err != nil {
			log.Printf("render frame: %v", err)
		}
	}
	a.updateFPS()
}

func (a *Application) updateFPS() {
	a.frameCount++
	a.framesAtFPS++
	if elapsed := time.Since(a.lastFPSTime); elapsed >= time.Second {
		a.currentFPS = float64(a.framesAtFPS) / elapsed.Seconds()
		a.framesAtFPS = 0
		a.lastFPSTime = time.Now()
	}
}

// processInput polls the window for events, translating button events into
// the 8-bit status byte the bus's controller expects (spec §3/§6).
func (a *Application) processInput() {
	if a.window == nil {
		return
	}
	for _, event := range a.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			a.Stop()
		case graphics.InputEventTypeButton:
			if idx, ok := buttonBitIndex(event.Button); ok {
				a.buttonState[idx] = event.Pressed
			}
		}
	}
	if a.emulator != nil {
		a.emulator.SetController1(packButtonState(a.buttonState))
	}
}

func buttonBitIndex(b graphics.Button) (int, bool) {
	switch b {
	case graphics.ButtonA:
		return 0, true
	case graphics.ButtonB:
		return 1, true
	case graphics.ButtonSelect:
		return 2, true
	case graphics.ButtonStart:
		return 3, true
	case graphics.ButtonUp:
		return 4, true
	case graphics.ButtonDown:
		return 5, true
	case graphics.ButtonLeft:
		return 6, true
	case graphics.ButtonRight:
		return 7, true
	default:
		return 0, false
	}
}

func packButtonState(state [8]bool) uint8 {
	var status uint8
	buttons := [8]controller.Button{
		controller.A, controller.B, controller.Select, controller.Start,
		controller.Up, controller.Down, controller.Left, controller.Right,
	}
	for i, pressed := range state {
		if pressed {
			status |= uint8(buttons[i])
		}
	}
	return status
}

// Stop ends the Run loop at the next iteration. It has no effect on the
// ebitengine window's loop, which runs until the window is closed.
func (a *Application) Stop() { a.running = false }

// Pause/Resume/TogglePause suspend and resume frame stepping; the PPU and
// CPU state are left untouched, so resuming continues exactly where it left
// off (spec §5: suspension only happens between CPU ticks).
func (a *Application) Pause()       { a.paused = true }
func (a *Application) Resume()      { a.paused = false }
func (a *Application) TogglePause() { a.paused = !a.paused }

// Reset reinitializes the CPU/PPU to their post-power state without
// reloading the cartridge.
func (a *Application) Reset() {
	if a.emulator != nil {
		a.emulator.Reset()
	}
}

func (a *Application) IsRunning() bool          { return a.running }
func (a *Application) IsPaused() bool           { return a.paused }
func (a *Application) GetFPS() float64          { return a.currentFPS }
func (a *Application) GetFrameCount() uint64    { return a.frameCount }
func (a *Application) GetUptime() time.Duration { return time.Since(a.startTime) }
func (a *Application) GetROMPath() string       { return a.romPath }
func (a *Application) GetConfig() *Config       { return a.config }

// Emulator exposes the underlying Emulator, e.g. for a headless driver that
// wants to step frames directly.
func (a *Application) Emulator() *Emulator { return a.emulator }

// Cleanup releases the graphics backend's resources.
func (a *Application) Cleanup() error {
	if a.window != nil {
		if err := a.window.Cleanup(); err != nil {
			return err
		}
	}
	if a.graphicsBackend != nil {
		return a.graphicsBackend.Cleanup()
	}
	return nil
}
