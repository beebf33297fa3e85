package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/classilla/tutti/internal/rom"
)

var (
	biosPath      string
	extensionPath string
	cassettePath  string
	snapshotPath  string
	warp          bool
	scale         int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the Tomy Tutor emulator",
	Args:  cobra.NoArgs,
	Run:   runTutor,
}

func init() {
	runCmd.Flags().StringVar(&biosPath, "bios", "tutor1.bin", "path to the 32 KiB BIOS ROM image")
	runCmd.Flags().StringVar(&extensionPath, "extension", "", "path to the 16 KiB extension ROM image (optional)")
	runCmd.Flags().StringVar(&cassettePath, "cassette", "", "path to a cassette image to mount for LOAD")
	runCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "save-state file; loaded at startup if it exists, and written by F6 during a run")
	runCmd.Flags().BoolVar(&warp, "warp", false, "run at unlimited speed instead of pacing to 60 Hz")
	runCmd.Flags().IntVar(&scale, "scale", 3, "display scale (1-6)")
}

func runTutor(cmd *cobra.Command, args []string) {
	if scale < 1 || scale > 6 {
		fmt.Fprintln(os.Stderr, "error: --scale must be between 1 and 6")
		os.Exit(1)
	}

	host, err := newHost(scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating display/audio host: %v\n", err)
		os.Exit(1)
	}
	defer host.Close()

	host.Machine.Warp = warp

	if err := rom.LoadBIOS(host.Machine.Bus, biosPath); err != nil {
		fmt.Fprintf(os.Stderr, "error loading BIOS: %v\n", err)
		os.Exit(1)
	}
	if extensionPath != "" {
		if err := rom.LoadExtension(host.Machine.Bus, extensionPath); err != nil {
			fmt.Fprintf(os.Stderr, "error loading extension ROM: %v\n", err)
			os.Exit(1)
		}
	}
	if cassettePath != "" {
		data, err := os.ReadFile(cassettePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading cassette image: %v\n", err)
			os.Exit(1)
		}
		host.Machine.LoadCassette(data)
	}

	host.Machine.Reset()

	host.snapshotPath = snapshotPath
	if snapshotPath != "" {
		if data, err := os.ReadFile(snapshotPath); err == nil {
			if err := host.Machine.Load(data); err != nil {
				fmt.Fprintf(os.Stderr, "error loading snapshot %s: %v\n", snapshotPath, err)
				os.Exit(1)
			}
		} else if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "error reading snapshot %s: %v\n", snapshotPath, err)
			os.Exit(1)
		}
	}

	fmt.Println("Tomy Tutor Emulator")
	fmt.Println("===================")
	fmt.Printf("BIOS: %s\n", biosPath)
	if extensionPath != "" {
		fmt.Printf("Extension ROM: %s\n", extensionPath)
	}
	fmt.Printf("Warp: %v\n", warp)
	fmt.Printf("Display scale: %dx\n", scale)
	if snapshotPath != "" {
		fmt.Printf("Snapshot file: %s\n", snapshotPath)
	}
	fmt.Println()
	fmt.Println("Controls: keyboard maps directly to the Tutor's matrix; F5 resets; F6 saves a snapshot; F9 loads one; Escape quits.")

	if err := host.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", err)
		os.Exit(1)
	}
}
