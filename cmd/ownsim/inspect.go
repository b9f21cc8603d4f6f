package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ownsim/internal/snapshot"
	"ownsim/internal/source"
)

type inspectOptions struct {
	events bool
	verify string
}

func newInspectCmd() *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect [flags] <snapshot>",
		Short: "Print a snapshot written by run --snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.events, "events", false, "print the full event log")
	cmd.Flags().StringVar(&opts.verify, "verify", "", "check that the snapshot was taken from this script")
	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts inspectOptions) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	snap, err := snapshot.Load(path)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", path, err)
	}

	if opts.verify != "" {
		fs := source.NewFileSet()
		id, err := fs.Load(opts.verify)
		if err != nil {
			return fmt.Errorf("load %s: %w", opts.verify, err)
		}
		if fs.Get(id).Hash != snap.ScriptHash {
			return fmt.Errorf("snapshot %s was not taken from the current %s", path, opts.verify)
		}
	}

	out := cmd.OutOrStdout()
	if s.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	writeSnapshot(out, snap, s.Color, opts.events)
	return nil
}

func writeSnapshot(out io.Writer, snap *snapshot.Snapshot, colored bool, events bool) {
	bold := color.New(color.Bold)
	okc := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{bold, okc, bad} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	fmt.Fprintln(out, bold.Sprint(snap.Path))
	fmt.Fprintf(out, "  taken:     %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "  script:    %s\n", hex.EncodeToString(snap.ScriptHash[:8]))
	fmt.Fprintf(out, "  shadowing: %s\n", snap.Shadowing)
	verdict := okc.Sprint("ok")
	if snap.Failed {
		verdict = bad.Sprint("FAIL")
	}
	fmt.Fprintf(out, "  result:    %s, %d steps, %d events\n", verdict, len(snap.Steps), len(snap.Events))

	fmt.Fprintln(out)
	steps := make([][]string, 0, len(snap.Steps))
	for i, st := range snap.Steps {
		note := st.Kind
		if st.Expect != "" {
			note = "expect " + st.Expect
		}
		steps = append(steps, []string{strconv.Itoa(i + 1), st.Status, st.Text, note})
	}
	writeTable(out, bold, []string{"#", "STATUS", "STEP", "KIND"}, steps)

	if len(snap.Bindings) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(snap.Bindings))
		for _, b := range snap.Bindings {
			mut := ""
			if b.Mutable {
				mut = "mut"
			}
			state := b.State
			if b.MovedTo != "" {
				state += " -> " + b.MovedTo
			}
			rows = append(rows, []string{b.Name, b.Kind, mut, state, b.Value, strconv.FormatUint(uint64(b.Scope), 10)})
		}
		writeTable(out, bold, []string{"NAME", "KIND", "MUT", "STATE", "VALUE", "SCOPE"}, rows)
	}

	if len(snap.Buffers) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(snap.Buffers))
		for _, b := range snap.Buffers {
			released := "live"
			if b.Released {
				released = "released"
			}
			rows = append(rows, []string{strconv.FormatUint(uint64(b.ID), 10), b.Owner, strconv.Quote(b.Content), strconv.Itoa(b.Len), released})
		}
		writeTable(out, bold, []string{"BUF", "OWNER", "CONTENT", "LEN", "STATE"}, rows)
	}

	if events {
		fmt.Fprintln(out)
		for _, ev := range snap.Events {
			fmt.Fprintf(out, "  %4d  %s\n", ev.Seq, describeSnapshotEvent(ev))
		}
	}
}

func describeSnapshotEvent(ev snapshot.Event) string {
	parts := []string{ev.Kind}
	if ev.BorrowKind != "" {
		parts = append(parts, ev.BorrowKind)
	}
	if ev.Name != "" {
		parts = append(parts, ev.Name)
	}
	if ev.TargetName != "" {
		parts = append(parts, "-> "+ev.TargetName)
	}
	parts = append(parts, fmt.Sprintf("(scope %d)", ev.Scope))
	if ev.Note != "" {
		parts = append(parts, ev.Note)
	}
	return strings.Join(parts, " ")
}

// writeTable aligns cells by display width.
func writeTable(out io.Writer, head *color.Color, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString("  ")
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		return strings.TrimRight(sb.String(), " ")
	}
	fmt.Fprintln(out, head.Sprint(line(header)))
	for _, row := range rows {
		fmt.Fprintln(out, line(row))
	}
}
