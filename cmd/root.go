// Package cmd wires the CLI: flags, config and the choice between the
// plain monitor and the interactive TUI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sniffscope/internal/capture"
	"sniffscope/internal/controller"
	"sniffscope/internal/export"
	"sniffscope/internal/filter"
	"sniffscope/internal/handlers"
	"sniffscope/internal/monitor"
	"sniffscope/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:          "sniffscope",
	Short:        "Capture packets from network devices",
	Long:         "sniffscope attaches to a network interface, classifies captured frames by protocol, optionally filters and exports them, and shows a live view with running statistics.",
	SilenceUsage: true,
	RunE:         run,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.BoolP("promisc", "p", false, "capture all packets on the network")
	flags.BoolP("tui", "t", false, "show the interactive terminal interface")
	flags.StringP("export", "e", "", "append captured packet lines to this file")
	flags.BoolP("clear", "c", false, "clear the export file before capturing")
	flags.StringP("filter", "f", "", "semicolon-separated display patterns, leading ! excludes (e.g. \"TCP;!192.168.1.1\")")
	flags.BoolP("verbose", "v", false, "log every observed frame, including filtered ones")
	flags.String("listen", "", "serve the live packet feed over WebSocket on this address (e.g. :8080)")
	flags.String("read", "", "replay a pcap file instead of capturing live")
	flags.Int("snaplen", capture.DefaultSnapLen, "capture snapshot length in bytes")

	if err := viper.BindPFlags(flags); err != nil {
		log.WithError(err).Fatal("bind flags")
	}
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "sniffscope"))
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("SNIFFSCOPE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded config file")
	}
}

func run(cmd *cobra.Command, args []string) error {
	tuiMode := viper.GetBool("tui")
	verbose := viper.GetBool("verbose")
	exportPath := viper.GetString("export")
	clearFile := viper.GetBool("clear")
	readFile := viper.GetString("read")

	if verbose && tuiMode {
		return errors.New("--verbose and --tui are mutually exclusive")
	}
	if clearFile && exportPath == "" {
		return errors.New("--clear requires --export to be set")
	}
	if readFile != "" && tuiMode {
		return errors.New("--read is only available without --tui")
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	var exporter *export.Exporter
	if exportPath != "" {
		var err error
		exporter, err = export.Prepare(exportPath, clearFile)
		if err != nil {
			return err
		}
		defer exporter.Close()
	}

	devices, err := capture.ListDevices()
	if err != nil {
		return fmt.Errorf("cannot list capture devices: %w", err)
	}
	if len(devices) == 0 && readFile == "" {
		return errors.New("no capture devices found")
	}

	promisc := viper.GetBool("promisc")
	snapLen := int32(viper.GetInt("snaplen"))
	ctrl := controller.New(controller.Config{
		Devices:     devices,
		Rules:       filter.ParseSpec(viper.GetString("filter")),
		Promiscuous: promisc,
		Open: func(dev capture.Device, promisc bool) (controller.FrameSource, error) {
			return capture.Open(dev, promisc, snapLen)
		},
		Exporter: exporter,
	})

	if listen := viper.GetString("listen"); listen != "" {
		hub := handlers.NewHub()
		ctrl.AttachObserver(hub)
		mux := http.NewServeMux()
		handlers.RegisterRoutes(mux, hub, devices)
		go func() {
			log.WithField("addr", listen).Info("live feed listening")
			if err := http.ListenAndServe(listen, mux); err != nil {
				log.WithError(err).Error("live feed server stopped")
			}
		}()
	}

	if tuiMode {
		// Frames must not leak onto the alternate screen.
		log.SetOutput(io.Discard)
		program := tea.NewProgram(tui.New(ctrl), tea.WithAltScreen())
		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("run tui: %w", err)
		}
		// A fatal capture error ends the program cleanly from bubbletea's
		// point of view; surface it once the alternate screen is gone.
		if m, ok := final.(tui.Model); ok && m.Err() != nil {
			log.SetOutput(os.Stderr)
			return fmt.Errorf("capture stopped: %w", m.Err())
		}
		return nil
	}

	return runPlain(ctrl, devices, readFile, promisc, snapLen)
}

func runPlain(ctrl *controller.Controller, devices []capture.Device, readFile string, promisc bool, snapLen int32) error {
	var (
		source *capture.Session
		name   string
		err    error
	)
	if readFile != "" {
		source, err = capture.OpenFile(readFile)
		name = readFile
	} else {
		var dev capture.Device
		dev, err = monitor.PromptDevice(devices, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		source, err = capture.Open(dev, promisc, snapLen)
		name = dev.Name
	}
	if err != nil {
		return err
	}

	ctrl.AttachObserver(&monitor.Printer{Out: os.Stdout})
	ctrl.StartWith(source, name)
	return monitor.Run(signalContext(), ctrl, source)
}

// signalContext cancels on the first interrupt; a second one exits hard.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}
