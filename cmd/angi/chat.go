package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
)

func chatCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("chat", flag.ContinueOnError)
	set.SetOutput(streams.err)
	configFlag := set.String("config", cfgPath, "Path to YAML config file.")
	set.Usage = func() {
		fmt.Fprintln(streams.err, "Usage: angi chat [flags]")
		fmt.Fprintln(streams.err, "\nFlags:")
		set.PrintDefaults()
		fmt.Fprintln(streams.err, "\nIn-session commands: /clear, /history, /tools, /quit")
	}
	if err := set.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	a, closeApp, err := buildApp(ctx, *configFlag, streams)
	if err != nil {
		return err
	}
	defer closeApp()

	fmt.Fprintln(streams.out, "🍜 Hôm nay ăn gì? Gõ câu hỏi, hoặc /quit để thoát.")
	scanner := bufio.NewScanner(streams.in)
	for {
		fmt.Fprint(streams.out, "> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch line {
		case "/quit", "/exit":
			return nil
		case "/clear":
			a.manager.Clear()
			fmt.Fprintln(streams.out, "Conversation cleared.")
			continue
		case "/history":
			for _, msg := range a.manager.History() {
				fmt.Fprintf(streams.out, "[%s] %s\n", msg.Role, msg.Content)
			}
			fmt.Fprintln(streams.out, a.manager.ContextSummary())
			continue
		case "/tools":
			printTools(a, streams)
			continue
		}

		err := a.manager.Send(ctx, line, func(chunk string) error {
			_, werr := fmt.Fprint(streams.out, chunk)
			return werr
		})
		fmt.Fprintln(streams.out)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(streams.err, "error: %v\n", err)
		}
	}
	return scanner.Err()
}
