package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

func toolsCommand(ctx context.Context, argv []string, cfgPath string, streams ioStreams) error {
	set := flag.NewFlagSet("tools", flag.ContinueOnError)
	set.SetOutput(streams.err)
	configFlag := set.String("config", cfgPath, "Path to YAML config file.")
	set.Usage = func() {
		fmt.Fprintln(streams.err, "Usage: angi tools [flags]")
		fmt.Fprintln(streams.err, "\nFlags:")
		set.PrintDefaults()
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

	printTools(a, streams)
	return nil
}

func printTools(a *app, streams ioStreams) {
	defs := a.registry.Definitions()
	if len(defs) == 0 {
		fmt.Fprintln(streams.out, "No functions registered.")
		return
	}
	fmt.Fprintf(streams.out, "%d functions registered:\n", len(defs))
	for _, def := range defs {
		fmt.Fprintf(streams.out, "  %-28s %s\n", def.Name, def.Description)
	}
}
