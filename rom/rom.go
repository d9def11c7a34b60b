// Package rom loads Chip-8 program files and offers the interactive game
// picker used when the emulator starts without a ROM path.
package rom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retrovm/chip8/cpu"
)

// Read returns the contents of a ROM file after checking that it fits the
// machine's program area.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ROM file '%s' is empty", path)
	}
	if len(data) > cpu.MaxProgramSize {
		return nil, fmt.Errorf("ROM file '%s' is %d bytes, program area holds %d",
			path, len(data), cpu.MaxProgramSize)
	}
	return data, nil
}

// List returns the ROM file paths in dir, sorted by file name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading games directory: %w", err)
	}

	var games []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		games = append(games, filepath.Join(dir, entry.Name()))
	}
	return games, nil
}

// Choose prints a numbered list of the games in dir on out and reads a
// selection from in, reprompting until the input is a valid index.
func Choose(dir string, in io.Reader, out io.Writer) (string, error) {
	games, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(games) == 0 {
		return "", fmt.Errorf("no games found in '%s'", dir)
	}

	fmt.Fprintln(out, "Choose a game from the list:")
	for i, game := range games {
		fmt.Fprintf(out, "%d- %s\n", i, filepath.Base(game))
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 0 || choice >= len(games) {
			fmt.Fprintln(out, "Invalid choice. Please choose a valid game number.")
			continue
		}
		return games[choice], nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return "", fmt.Errorf("no game selected")
}
