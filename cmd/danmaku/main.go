// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program danmaku is a command-line utility for normalizing danmaku comment
// lists captured from video platforms.
package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/maristie/ass-danmaku/catalog"
	"github.com/maristie/ass-danmaku/packet"
)

var globalFlags struct {
	Config  string `flag:"config,Path of a TOML config file (default $DANMAKU_CONFIG)"`
	Verbose bool   `flag:"v,Enable verbose logging"`
}

var parseFlags struct {
	Format   string `flag:"format,Input format name or auto"`
	Output   string `flag:"output,Output encoding (json or ndjson or yaml)"`
	Encoding string `flag:"encoding,Content encoding of the inputs"`
	DB       string `flag:"db,Store parsed lists in this database"`
	Workers  int    `flag:"workers,Maximum number of inputs parsed concurrently"`
	Name     string `flag:"name,Display name for stored lists"`
	URL      string `flag:"url,Source URL for stored lists"`
	SN       string `flag:"sn,Bahamut video serial number"`
}

var storeFlags struct {
	DB     string `flag:"db,Path of the list database"`
	Output string `flag:"output,Output encoding (json or ndjson or yaml)"`
}

func main() {
	root := &command.C{
		Name:     filepath.Base(os.Args[0]),
		Usage:    "<command> [arguments]",
		Help:     "Utilities for normalizing danmaku comment lists.",
		SetFlags: command.Flags(flax.MustBind, &globalFlags),
		Commands: []*command.C{
			{
				Name:  "parse",
				Usage: "[flags] <file|->...",
				Help: `Parse captured danmaku responses and print the normalized comments.

Each argument names a file holding one response body, or "-" for standard
input. Inputs are decoded according to --encoding, parsed concurrently, and
printed in the order given. With --format auto the format of each input is
guessed from its contents.

If --db is set, each parsed list is stored in the database. The list ID is
the format name and the correlation ID of the response, or the base name of
the input file if the response has none. For bahamut inputs, --sn selects
the list ID and name used by the site.`,
				SetFlags: command.Flags(flax.MustBind, &parseFlags),
				Run: func(env *command.Env) error {
					if len(env.Args) == 0 {
						return env.Usagef("Missing input arguments")
					}
					t, err := setup(env, Config{
						Format:   parseFlags.Format,
						Output:   parseFlags.Output,
						Encoding: parseFlags.Encoding,
						Database: parseFlags.DB,
						Workers:  parseFlags.Workers,
					})
					if err != nil {
						return err
					}
					return t.runParse(env.Context(), env.Args, listOptions{
						Name: parseFlags.Name,
						URL:  parseFlags.URL,
						SN:   parseFlags.SN,
					})
				},
			},
			{
				Name: "formats",
				Help: "List the names of the supported input formats.",
				Run: func(env *command.Env) error {
					fmt.Println(Auto)
					for _, name := range catalog.Default().Names() {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:     "list",
				Usage:    "--db <path>",
				Help:     "List the danmaku lists stored in a database.",
				SetFlags: command.Flags(flax.MustBind, &storeFlags),
				Run: func(env *command.Env) error {
					t, err := setup(env, Config{Database: storeFlags.DB, Output: storeFlags.Output})
					if err != nil {
						return err
					}
					return t.runList(env.Context())
				},
			},
			{
				Name:     "show",
				Usage:    "--db <path> <id>...",
				Help:     "Print the danmaku lists with the given IDs from a database.",
				SetFlags: command.Flags(flax.MustBind, &storeFlags),
				Run: func(env *command.Env) error {
					if len(env.Args) == 0 {
						return env.Usagef("Missing list ID arguments")
					}
					t, err := setup(env, Config{Database: storeFlags.DB, Output: storeFlags.Output})
					if err != nil {
						return err
					}
					return t.runShow(env.Context(), env.Args)
				},
			},
			{
				Name:  "pack",
				Usage: "<pattern> <argument>...",
				Help:  packHelp,
				Run: func(env *command.Env) error {
					if len(env.Args) == 0 {
						return env.Usagef("Missing pattern argument")
					}
					var b packet.Builder
					rest, err := packFields(&b, env.Args[0], env.Args[1:])
					if err != nil {
						return err
					} else if len(rest) != 0 {
						return fmt.Errorf("extra arguments: %q", rest)
					}
					os.Stdout.Write(b.Bytes())
					return nil
				},
			},
			command.VersionCommand(),
			command.HelpCommand(nil),
		},
	}
	command.RunOrFail(root.NewEnv(nil).MergeFlags(true), os.Args[1:])
}

// setup loads the config file named by the global flags, applies the
// settings from flags over it, and constructs a tool.
func setup(env *command.Env, flags Config) (*tool, error) {
	cfg, err := LoadConfig(cmp.Or(globalFlags.Config, os.Getenv("DANMAKU_CONFIG")))
	if err != nil {
		return nil, err
	}
	cfg = cfg.merge(flags)
	if err := cfg.Validate(catalog.Default().Names()); err != nil {
		return nil, env.Usagef("%v", err)
	}
	log := newLogger(os.Stderr, globalFlags.Verbose)
	return newTool(cfg, log, os.Stdin, os.Stdout), nil
}
