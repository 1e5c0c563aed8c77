package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/browser"
)

// OpenURL opens url in the default browser, sending the browser's own chatter
// to the discard writer so it does not garble the screen.
func OpenURL(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// Player launches an external player (ani-cli by default) for a title.
type Player struct {
	command []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewPlayer splits command on whitespace; the first word is the program, the
// rest are fixed leading arguments.
func NewPlayer(command string) *Player {
	return &Player{
		command: strings.Fields(command),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// Play runs the player with title as its final argument and waits for it to
// exit. The title is one argv element; no shell is involved, so it needs no
// quoting.
func (p *Player) Play(ctx context.Context, title string) error {
	if len(p.command) == 0 {
		return fmt.Errorf("no player command configured")
	}
	args := append(append([]string{}, p.command[1:]...), title)

	cmd := exec.CommandContext(ctx, p.command[0], args...)
	cmd.Stdin = p.stdin
	cmd.Stdout = p.stdout
	cmd.Stderr = p.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", p.command[0], err)
	}
	return nil
}
