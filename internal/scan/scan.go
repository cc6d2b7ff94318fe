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
package scan

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ntfsdig/ntfsdig/internal/disk"
	"github.com/ntfsdig/ntfsdig/internal/env"
	"github.com/ntfsdig/ntfsdig/internal/fs"
	"github.com/ntfsdig/ntfsdig/pkg/csvreport"
	"github.com/ntfsdig/ntfsdig/pkg/dfxml"
	"github.com/ntfsdig/ntfsdig/pkg/ntfs"
	"github.com/ntfsdig/ntfsdig/pkg/pbar"
	fmtutil "github.com/ntfsdig/ntfsdig/pkg/util/format"
)

// Options configures a scan run across one or more NTFS partitions.
type Options struct {
	ReportFile      string // DFXML output path; defaults to report_<session>.xml.
	CSVFile         string // Optional flat CSV export alongside the DFXML report.
	DisableLog      bool
	LogLevel        slog.Level
	WithDiagnostics bool // collect per-record skip reasons via the parser's WithDiagnostics option
	NoProgress      bool
	UseMmap         bool // memory-map the image instead of read syscalls; whole-disk images only
}

// Scan discovers every NTFS partition on the image at filePath and walks
// each one's MFT in turn.
func Scan(filePath string, opts Options) error {
	f, err := fs.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open image file %q: %w", filePath, err)
	}
	defer f.Close()

	finfo, err := f.Stat()
	if err != nil {
		return err
	}

	partitions, err := disk.DiscoverNTFSPartitions(f, uint64(finfo.Size()))
	if err != nil {
		return err
	}

	for _, p := range partitions {
		if err := ScanPartition(&p, filePath, opts); err != nil {
			return err
		}
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// ScanPartition walks one partition's MFT, emitting a DFXML report and,
// optionally, a CSV sibling.
func ScanPartition(p *disk.Partition, filePath string, opts Options) error {
	f, err := fs.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	imgInfo, err := f.Stat()
	if err != nil {
		return err
	}

	session := GenSessionID()

	reportFileName := opts.ReportFile
	if reportFileName == "" {
		reportFileName = fmt.Sprintf("report_%s.xml", session)
	}

	outFile, err := os.Create(reportFileName)
	if err != nil {
		return err
	}
	defer outFile.Close()

	reportWriter := dfxml.NewDFXMLWriter(outFile)
	defer reportWriter.Close()

	err = reportWriter.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename: filePath,
			SectorSize:    int(p.BlockSize),
			ImageSize:     uint64(imgInfo.Size()),
		},
	})
	if err != nil {
		return err
	}

	var csvWriter *csvreport.Writer
	if opts.CSVFile != "" {
		csvFile, err := os.Create(opts.CSVFile)
		if err != nil {
			return err
		}
		defer csvFile.Close()
		csvWriter = csvreport.NewWriter(csvFile)
	}

	var logFilePath string
	if !opts.DisableLog {
		logFilePath = absPath(session + ".log")
	}
	logger, logFile, err := setupLogger(logFilePath, opts.LogLevel)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	fmt.Println("[INFO] Starting MFT scan...")
	fmt.Printf("[INFO] Source: \t%s\n", absPath(filePath))
	fmt.Printf("[INFO] Partition: \toffset=%s size=%s\n", fmtutil.FormatBytes(int64(p.Offset)), fmtutil.FormatBytes(int64(p.Size)))

	outLog := "disabled"
	if !opts.DisableLog {
		outLog = logFilePath
	}
	fmt.Printf("[INFO] Output Log: \t%s\n", outLog)

	var parserOpts []ntfs.Option
	if opts.WithDiagnostics {
		parserOpts = append(parserOpts, ntfs.WithDiagnostics(true))
	}

	var parser *ntfs.Parser
	if opts.UseMmap && p.Offset == 0 {
		parser, err = ntfs.OpenMmap(filePath, parserOpts...)
	} else {
		section := io.NewSectionReader(f, int64(p.Offset), int64(p.Size))
		parser, err = ntfs.OpenReaderAt(section, parserOpts...)
	}
	if err != nil {
		return fmt.Errorf("failed to open NTFS volume: %w", err)
	}
	defer parser.Close()

	total := parser.Count()

	var pbs *pbar.ProgressBarState
	if !opts.NoProgress {
		pbs = pbar.NewProgressBarState(int64(total))
	}

	start := time.Now()
	buf := make([]ntfs.MftFile, 4096)
	for {
		n, more, err := parser.ReadBatch(buf)
		for _, mf := range buf[:n] {
			if err := reportWriter.WriteMftFile(dfxml.MftFileObject{
				RecordID:  mf.ID,
				Parent:    mf.Parent,
				Name:      mf.Name,
				Size:      mf.Size,
				Created:   mf.Created,
				Accessed:  mf.Accessed,
				Modified:  mf.Modified,
				Directory: mf.Directory,
			}); err != nil {
				logger.Error("unable to write index entry", "err", err)
			}
			if csvWriter != nil {
				csvWriter.Add(csvreport.MftFile{
					ID:        mf.ID,
					Parent:    mf.Parent,
					Name:      mf.Name,
					Size:      mf.Size,
					Created:   mf.Created,
					Accessed:  mf.Accessed,
					Modified:  mf.Modified,
					Directory: mf.Directory,
				})
			}
		}
		if pbs != nil {
			stats := parser.Stats()
			pbs.Processed = int64(stats.RecordsScanned)
			pbs.FilesFound = int(stats.RecordsEmitted)
			pbs.Render(false)
		}
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if !more {
			break
		}
	}
	if pbs != nil {
		pbs.Processed = int64(parser.Stats().RecordsScanned)
		pbs.Render(true)
		pbs.Finish()
	}

	if csvWriter != nil {
		if err := csvWriter.Close(); err != nil {
			return fmt.Errorf("failed to write CSV report: %w", err)
		}
	}

	if opts.WithDiagnostics {
		if diagErr := parser.Diagnostics(); diagErr != nil {
			logger.Warn("records skipped during scan", "reasons", diagErr)
		}
	}

	stats := parser.Stats()
	fmt.Println("[INFO] Scan completed!")
	fmt.Printf("[INFO] Records scanned: \t%d\n", stats.RecordsScanned)
	fmt.Printf("[INFO] Files found: \t%d\n", stats.RecordsEmitted)
	fmt.Printf("[INFO] Records skipped: \t%d\n", stats.RecordsSkipped)
	fmt.Printf("[INFO] Duration: \t%s\n", FormatDurationHMS(time.Since(start)))
	fmt.Printf("[INFO] Report saved to: \t%s\n", absPath(reportFileName))
	if opts.CSVFile != "" {
		fmt.Printf("[INFO] CSV report saved to: \t%s\n", absPath(opts.CSVFile))
	}
	if !opts.DisableLog {
		fmt.Printf("[INFO] Detailed scan log: \t%s\n", logFilePath)
	}
	return nil
}

// GenSessionID creates a unique file name for a scan session.
// The format is "YYYYMMDD_HHMMSS".
func GenSessionID() string {
	return time.Now().Format("20060102_150405")
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// It handles durations that might be less than an hour or greater than 24 hours.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// setupLogger initializes a new slog.Logger that writes to a specified file or discards output.
// - logFilePath: The full path to the log file. If empty, logs will be discarded (file logging disabled).
// - minLevel: The minimum log level to write.
// It returns the logger instance and the *os.File, which will be nil if logging to file is disabled.
// The returned *os.File (if not nil) should be closed by the caller.
func setupLogger(logFilePath string, minLevel slog.Level) (*slog.Logger, *os.File, error) {
	var writer io.Writer
	var file *os.File

	if logFilePath == "" {
		writer = io.Discard
	} else {
		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
		}

		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
		}
		writer = f
		file = f
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: true,
	})

	logger := slog.New(handler)
	return logger, file, nil
}
