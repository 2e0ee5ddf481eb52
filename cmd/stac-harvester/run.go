package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/stac-harvester/internal/invocation"
	"github.com/robert-malhotra/stac-harvester/pkg/store"
)

var (
	urlFlag = &cli.StringSliceFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "STAC collections endpoint to harvest (repeatable); defaults to --default-url",
	}
	outDirFlag = &cli.StringFlag{
		Name:  "out-dir",
		Usage: "Write objects below this directory instead of S3",
	}
	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Keep objects in memory instead of writing them anywhere",
	}
)

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Harvest once and print the response",
		Flags:  []cli.Flag{urlFlag, outDirFlag, dryRunFlag},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 0 {
		return fmt.Errorf("no arguments expected; use --url")
	}

	gw, err := gatewayFromCommand(cmd)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cmd, gw)
	if err != nil {
		return err
	}
	defer app.close()

	event, err := eventFromURLs(cmd.StringSlice(urlFlag.Name))
	if err != nil {
		return err
	}

	resp, err := app.handler.Handle(ctx, event)
	if err != nil {
		return err
	}
	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return printBody(out, resp.Body)
}

func gatewayFromCommand(cmd *cli.Command) (store.Gateway, error) {
	outDir := cmd.String(outDirFlag.Name)
	dryRun := cmd.Bool(dryRunFlag.Name)
	switch {
	case outDir != "" && dryRun:
		return nil, fmt.Errorf("--out-dir and --dry-run are mutually exclusive")
	case outDir != "":
		return store.NewDir(outDir), nil
	case dryRun:
		return store.NewMemory(), nil
	}
	return nil, nil
}

// eventFromURLs builds the invocation payload a Lambda caller would send.
func eventFromURLs(urls []string) (json.RawMessage, error) {
	if len(urls) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.Marshal(map[string][]string{invocation.EndpointsField: urls})
}

func printBody(w io.Writer, body string) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}
