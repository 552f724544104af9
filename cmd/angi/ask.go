package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
)

func askCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("ask", flag.ContinueOnError)
	set.SetOutput(streams.err)
	configFlag := set.String("config", cfgPath, "Path to YAML config file.")
	set.Usage = func() {
		fmt.Fprintln(streams.err, "Usage: angi ask [flags] \"message\"")
		fmt.Fprintln(streams.err, "\nFlags:")
		set.PrintDefaults()
		fmt.Fprintln(streams.err, "\nExamples:")
		fmt.Fprintln(streams.err, "  angi ask \"trưa nay ăn gì?\"")
		fmt.Fprintln(streams.err, "  angi ask \"thời tiết chỗ tôi thế nào?\"")
	}
	if err := set.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	message := strings.TrimSpace(strings.Join(set.Args(), " "))
	if message == "" {
		return errors.New("ask requires a message")
	}

	a, closeApp, err := buildApp(ctx, *configFlag, streams)
	if err != nil {
		return err
	}
	defer closeApp()

	err = a.manager.Send(ctx, message, func(chunk string) error {
		_, werr := fmt.Fprint(streams.out, chunk)
		return werr
	})
	fmt.Fprintln(streams.out)
	return err
}
