package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ritchiero/Budget-Agent/cli/internal/remote"
	"github.com/ritchiero/Budget-Agent/internal/assistant"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A855F7")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F43F5E"))
)

// exitWords end the chat session
var exitWords = []string{"q", "quit", "exit"}

func isExit(input string) bool {
	input = strings.ToLower(input)
	for _, w := range exitWords {
		if input == w {
			return true
		}
	}
	return false
}

// lineReader reads one line of user input
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// chatInput provides input history and line editing for interactive chat
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput() *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".budget-agent_history")
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".budget-agent_history")
	}

	c := &chatInput{line: line, historyFile: historyFile}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line with history navigation
func (c *chatInput) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal
func (c *chatInput) Close() {
	if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

func newChatCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about your agent spend interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			responder, err := opts.responder()
			if err != nil {
				return err
			}

			input := newChatInput()
			defer input.Close()

			return runChat(cmd.Context(), responder, input, opts.out)
		},
	}
}

func (o *options) responder() (Responder, error) {
	if o.remote != "" {
		return remote.NewClient(o.remote, o.apiKey), nil
	}
	analyzer, cfg, err := o.analyzer()
	if err != nil {
		return nil, err
	}
	return assistant.FromConfig(cfg.LLM, analyzer), nil
}

// runChat is the REPL loop. It returns nil when the user leaves.
func runChat(ctx context.Context, r Responder, in lineReader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(out, welcomeStyle.Render("Budget Agent"))
	fmt.Fprintln(out, infoStyle.Render("Ask where your tokens go, or what a task will cost. Type q to quit."))
	fmt.Fprintln(out)

	for {
		input, err := in.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C, Ctrl+D or a closed input all end the session
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if isExit(input) {
			return nil
		}

		reply, err := r.Reply(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n\n", errorStyle.Render("[Error]"), err)
			continue
		}

		fmt.Fprintln(out, reply.Response)
		if reply.Source == assistant.SourceFallback {
			fmt.Fprintln(out, infoStyle.Render("(answered from local reports)"))
		}
		fmt.Fprintln(out)
	}
}
