package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/kadirpekel/lector/pkg/chat"
)

// ChatCmd runs an interactive chat session against the configured model
// without starting a server.
type ChatCmd struct{}

func (c *ChatCmd) Run(cli *CLI) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("chat requires an interactive terminal; use 'lector serve' for programmatic access")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()

	knowledge, err := knowledgeEngine(ctx, cfg, comps)
	if err != nil {
		return err
	}
	uploads := uploadBuilder(cfg, comps)

	session, err := chat.NewSession("terminal", comps.llm, knowledge, uploads, cfg.Session, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Chatting with %s. Type /quit to exit.\n\n", comps.llm.ModelName())

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Print("You: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			fmt.Println("Bye.")
			return nil
		}

		// On failure the session returns a user-facing apology alongside
		// the error, so the answer is always printable.
		answer, err := session.ProcessMessage(ctx, input, nil)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		fmt.Printf("\nAssistant: %s\n\n", answer)
	}
}
