// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ntfsdig/ntfsdig/internal/disk"
	"github.com/ntfsdig/ntfsdig/internal/scan"
)

func DefineScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scan <image_or_device>",
		Short:        "Carve a volume's Master File Table into a DFXML report",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunScan,
	}

	cmd.Flags().StringP("output", "o", "", "path of the DFXML report (default report_<session>.xml)")
	cmd.Flags().String("csv", "", "also write a flat CSV report to this path")
	cmd.Flags().Bool("no-log", false, "disable logging")
	cmd.Flags().Bool("no-progress", false, "disable the live progress line")
	cmd.Flags().Bool("diagnostics", false, "collect and log per-record skip reasons")
	cmd.Flags().String("log-level", "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().Bool("mmap", false, "memory-map the image instead of using read syscalls (whole-disk images only)")

	return cmd
}

func RunScan(cmd *cobra.Command, args []string) error {
	path := disk.NormalizeVolumePath(args[0])

	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}
	return scan.Scan(path, opts)
}

func parseOptions(cmd *cobra.Command) (scan.Options, error) {
	outputFile, _ := cmd.Flags().GetString("output")
	csvFile, _ := cmd.Flags().GetString("csv")
	disableLog, _ := cmd.Flags().GetBool("no-log")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	withDiagnostics, _ := cmd.Flags().GetBool("diagnostics")
	logLevel, _ := cmd.Flags().GetString("log-level")
	useMmap, _ := cmd.Flags().GetBool("mmap")

	return scan.Options{
		ReportFile:      outputFile,
		CSVFile:         csvFile,
		DisableLog:      disableLog,
		NoProgress:      noProgress,
		WithDiagnostics: withDiagnostics,
		UseMmap:         useMmap,
		LogLevel:        parseSlogLevel(logLevel),
	}, nil
}

// parseSlogLevel maps the CLI's log-level flag onto slog's level type,
// which is what internal/scan's own file logger runs on.
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
