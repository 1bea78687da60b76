// Command nespocket is the NES emulator executable: it loads an iNES
// ROM image and opens a window presenting the emulated video output, with
// input read from the host keyboard (spec §6).
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nespocket/nespocket/internal/app"
	"github.com/nespocket/nespocket/internal/cartridge"
	"github.com/nespocket/nespocket/internal/version"
)

const (
	exitOK                = 0
	exitLoadFailure       = 1
	exitUnsupportedMapper = 2
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		headless    = flag.Bool("headless", false, "Run without a window, for scripted/CI use")
		showVersion = flag.Bool("version", false, "Show version information and exit")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(exitOK)
	}

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(exitLoadFailure)
	}
	romPath := flag.Arg(0)

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *headless)
	if err != nil {
		log.Printf("failed to start application: %v", err)
		os.Exit(exitLoadFailure)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	if *debug {
		application.GetConfig().Debug.EnableLogging = true
	}

	if err := application.LoadROM(romPath); err != nil {
		log.Printf("failed to load %s: %v", romPath, err)
		os.Exit(exitCodeFor(err))
	}

	if err := application.Run(); err != nil {
		log.Printf("run failed: %v", err)
		os.Exit(exitLoadFailure)
	}

	os.Exit(exitOK)
}

// exitCodeFor maps a cartridge load failure onto the spec's §6 exit codes:
// 2 for an unsupported mapper, 1 for everything else (bad header, I/O,
// truncated file).
func exitCodeFor(err error) int {
	var loadErr *cartridge.LoadError
	if errors.As(err, &loadErr) && loadErr.Kind == cartridge.KindUnsupportedMapper {
		return exitUnsupportedMapper
	}
	return exitLoadFailure
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "nespocket - a Go NES emulator")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "USAGE:")
	fmt.Fprintln(os.Stderr, "  nespocket [options] <rom-file>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "CONTROLS (default binding):")
	fmt.Fprintln(os.Stderr, "  Arrow keys  D-pad")
	fmt.Fprintln(os.Stderr, "  S / A       A / B")
	fmt.Fprintln(os.Stderr, "  Right Shift Select")
	fmt.Fprintln(os.Stderr, "  Enter       Start")
}
