// Command sequence prints the boards produced by successive Randomize calls
// on a fresh board, together with the outcome each board would have if it
// were evaluated. The output is stable for a given build and is used to
// compare the seeded generator against other implementations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/cookiegame/game/engine"
)

// Entry is one randomized board in the sequence
type Entry struct {
	Index    int             `json:"index"`
	Rendered string          `json:"rendered"`
	State    engine.Snapshot `json:"state"`
	Assessed string          `json:"assessed"`
}

func main() {
	cmd := &cli.Command{
		Name:  "sequence",
		Usage: "Print the seeded random board sequence",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of boards", Value: 5},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON lines instead of text"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printSequence(os.Stdout, cmd.Int("count"), cmd.Bool("json"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// generate returns the first count boards from a fresh board's generator
func generate(count int) []Entry {
	board := engine.New()
	entries := make([]Entry, 0, count)
	for i := 1; i <= count; i++ {
		board.Randomize()
		entries = append(entries, Entry{
			Index:    i,
			Rendered: board.Render(),
			State:    board.Snapshot(),
			Assessed: board.Assess().String(),
		})
	}
	return entries
}

func printSequence(w io.Writer, count int, asJSON bool) error {
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	entries := generate(count)
	if asJSON {
		enc := json.NewEncoder(w)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Fprintf(w, "seed %d, %d boards\n", engine.Seed, count)
	for _, e := range entries {
		fmt.Fprintf(w, "\n=== Board %d (assessed: %s) ===\n", e.Index, e.Assessed)
		fmt.Fprint(w, e.Rendered)
	}
	return nil
}
