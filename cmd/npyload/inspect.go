package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npyload/internal/logger"
	"github.com/samcharles93/npyload/internal/summary"
	"github.com/samcharles93/npyload/pkg/npy"
)

type headerInfo struct {
	Version    string `json:"version"`
	HeaderLen  uint32 `json:"header_len"`
	DataOffset int64  `json:"data_offset"`
}

type inspectResult struct {
	Path    string           `json:"path"`
	Header  *headerInfo      `json:"header,omitempty"`
	Summary *summary.Summary `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func inspectCmd() *cli.Command {
	var (
		rows    int
		workers int
		format  string
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode .npy files and print their header, shape and statistics",
		ArgsUsage: "<file.npy|dir> [...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "rows",
				Aliases:     []string{"n"},
				Usage:       "leading rows to preview (0 to skip)",
				Value:       5,
				Destination: &rows,
			},
			&cli.IntFlag{
				Name:        "workers",
				Aliases:     []string{"j"},
				Usage:       "files decoded in parallel (default: number of CPUs)",
				Value:       runtime.NumCPU(),
				Destination: &workers,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyInspectConfig(cmd, appConfig, &rows, &workers, &format)
			paths, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			if len(paths) == 0 {
				return cli.Exit("error: at least one .npy file is required", 1)
			}
			if format != "text" && format != "json" {
				return cli.Exit(fmt.Sprintf("error: unknown format %q", format), 1)
			}

			log := logger.FromContext(ctx)
			results := inspectFiles(ctx, paths, rows, workers, log)

			w := cmd.Root().Writer
			if format == "json" {
				err = writeJSON(w, results)
			} else {
				err = writeText(w, results)
			}
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d files failed to decode", failed, len(results)), 1)
			}
			return nil
		},
	}
}

// inspectFiles decodes paths on a bounded worker pool. Results keep the order
// of paths.
func inspectFiles(ctx context.Context, paths []string, rows, workers int, log logger.Logger) []inspectResult {
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, len(paths))

	results := make([]inspectResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = inspectFile(paths[i], rows)
				if results[i].Error != "" {
					log.Warn("decode failed", "file", paths[i], "error", results[i].Error)
				} else {
					log.Debug("decoded", "file", paths[i], "dtype", results[i].Summary.DType, "shape", results[i].Summary.Shape)
				}
			}
		}()
	}

feed:
	for i := range paths {
		if ctx.Err() != nil {
			fillCancelled(results[i:], paths[i:], ctx.Err())
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			fillCancelled(results[i:], paths[i:], ctx.Err())
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func fillCancelled(results []inspectResult, paths []string, err error) {
	for i := range results {
		results[i] = inspectResult{Path: paths[i], Error: err.Error()}
	}
}

func inspectFile(path string, rows int) inspectResult {
	res := inspectResult{Path: path}

	arr, h, err := npy.LoadWithHeader(path)
	if h.Major != 0 {
		res.Header = &headerInfo{
			Version:    fmt.Sprintf("%d.%d", h.Major, h.Minor),
			HeaderLen:  h.HeaderLen,
			DataOffset: h.DataOffset,
		}
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	sum := summary.Compute(arr, rows)
	res.Summary = &sum
	return res
}

func writeJSON(w io.Writer, results []inspectResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeText(w io.Writer, results []inspectResult) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "File: %s\n", r.Path)
		if r.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", r.Error)
			continue
		}
		s := r.Summary
		fmt.Fprintf(&b, "  format:        v%s | header_len=%d | data_offset=%d\n",
			r.Header.Version, r.Header.HeaderLen, r.Header.DataOffset)
		fmt.Fprintf(&b, "  dtype:         %s (%s)\n", s.DType, s.Descr)
		fmt.Fprintf(&b, "  shape:         %s\n", formatShape(s.Shape))
		fmt.Fprintf(&b, "  fortran_order: %v\n", s.FortranOrder)
		fmt.Fprintf(&b, "  elements:      %d (%s)\n", s.Elements, formatBytes(uint64(s.Bytes)))
		if s.Stats != nil {
			fmt.Fprintf(&b, "  range:         [%g, %g] mean=%g\n", s.Stats.Min, s.Stats.Max, s.Stats.Mean)
			if s.Stats.NonFinite > 0 {
				fmt.Fprintf(&b, "  non-finite:    %d\n", s.Stats.NonFinite)
			}
		}
		if len(s.Head) > 0 {
			b.WriteString("  head:\n")
			for _, row := range s.Head {
				fmt.Fprintf(&b, "    %s\n", row)
			}
			if len(s.Shape) > 0 && s.Shape[0] > len(s.Head) {
				fmt.Fprintf(&b, "    ... (%d more)\n", s.Shape[0]-len(s.Head))
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
