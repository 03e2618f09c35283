package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/cpcgfx"
	"github.com/bodgit/cpcgfx/palette"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

var modeFlag = &cli.IntFlag{
	Name:     "mode",
	Aliases:  []string{"m"},
	EnvVars:  []string{"CPCGFX_MODE"},
	Usage:    "CPC screen mode (0, 1 or 2)",
	Required: true,
}

var bgInkFlag = &cli.IntFlag{
	Name:  "bg-ink",
	Value: palette.NoIndex,
	Usage: "ink for pens without an INK pen,ink directive",
}

var layoutFlag = &cli.StringFlag{
	Name:  "layout",
	Value: cpcgfx.LayoutAuto.String(),
	Usage: "block layout: auto, header (width in bytes and height first) or lines (one db line per row)",
}

var widthFlag = &cli.IntFlag{
	Name:  "width",
	Usage: "width in pixels of raw data, overrides --layout",
}

var recursiveFlag = &cli.BoolFlag{
	Name:    "recursive",
	Aliases: []string{"r"},
	Usage:   "search subdirectories too",
}

// options builds the conversion options, failing before any work is done if
// the mode is invalid.
func options(c *cli.Context) (cpcgfx.Options, error) {
	mode, err := palette.ParseMode(c.Int("mode"))
	if err != nil {
		return cpcgfx.Options{}, err
	}

	opts := cpcgfx.DefaultOptions(mode)
	opts.Verbose = c.Bool("verbose")
	opts.Recursive = c.Bool("recursive")
	if c.IsSet("bg-ink") {
		opts.Background = c.Int("bg-ink")
	}
	opts.Width = c.Int("width")
	if name := c.String("layout"); name != "" {
		if opts.Layout, err = cpcgfx.ParseLayout(name); err != nil {
			return cpcgfx.Options{}, err
		}
	}

	return opts, nil
}

func run(c *cli.Context, opts cpcgfx.Options, f func(*cpcgfx.Converter) error) error {
	logger := log.New(os.Stderr, "", 0)

	conv, err := cpcgfx.New(opts, logger)
	if err != nil {
		return cli.NewExitError(err, 2)
	}

	if err := f(conv); err != nil {
		return cli.NewExitError(err, 1)
	}

	if !c.Bool("quiet") {
		fmt.Fprintln(c.App.Writer)
		if err := conv.WriteSummary(c.App.Writer); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	if n := conv.Errors(); n > 0 {
		return cli.NewExitError(fmt.Sprintf("%d conversion(s) failed", n), 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "cpcgfx"
	app.Usage = "Amstrad CPC graphics to and from assembler data"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "do not print the summary table",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "png2asm",
			Usage:       "Convert a directory of images to a single assembler file",
			Description: "Every image becomes a block labelled after its file name holding the width in bytes, the height and the packed screen bytes.",
			Flags: []cli.Flag{
				modeFlag,
				&cli.StringFlag{
					Name:     "out",
					Aliases:  []string{"o"},
					Usage:    "output assembler file, relative to --out-dir",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "dir",
					Value: "GRAFICOS",
					Usage: "directory to read images from",
				},
				&cli.StringFlag{
					Name:  "out-dir",
					Value: "ASM",
					Usage: "directory for the assembler file",
				},
				&cli.IntFlag{
					Name:  "transparent-ink",
					Value: palette.NoIndex,
					Usage: "pen (ink with --adaptive) for fully transparent pixels",
				},
				&cli.BoolFlag{
					Name:  "adaptive",
					Usage: "match against all 27 inks and allocate pens in order of use",
				},
				&cli.BoolFlag{
					Name:  "quantize",
					Usage: "reduce colours with a median cut before matching",
				},
				&cli.BoolFlag{
					Name:  "hex",
					Usage: "write values as &FF",
				},
				&cli.StringFlag{
					Name:    "db",
					EnvVars: []string{"CPCGFX_DB"},
					Usage:   "cache converted images in this database",
				},
				recursiveFlag,
			},
			Action: func(c *cli.Context) error {
				opts, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 2)
				}
				opts.Transparent = c.Int("transparent-ink")
				opts.Adaptive = c.Bool("adaptive")
				opts.Quantize = c.Bool("quantize")
				opts.Hex = c.Bool("hex")

				if file := c.String("db"); file != "" {
					cache, err := cpcgfx.NewCache(file)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					defer cache.Close()
					opts.Cache = cache
				}

				out := c.String("out")
				if !filepath.IsAbs(out) {
					out = filepath.Join(c.String("out-dir"), out)
				}

				return run(c, opts, func(conv *cpcgfx.Converter) error {
					return conv.EncodeDir(c.String("dir"), out)
				})
			},
		},
		{
			Name:      "asm2png",
			Usage:     "Convert one block of an assembler file to a PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				modeFlag,
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "output PNG, defaults to the label",
				},
				&cli.StringFlag{
					Name:  "label",
					Usage: "block to convert instead of the first",
				},
				bgInkFlag,
				layoutFlag,
				widthFlag,
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 2)
				}

				return run(c, opts, func(conv *cpcgfx.Converter) error {
					return conv.DecodeFile(c.Args().First(), c.String("out"), c.String("label"))
				})
			},
		},
		{
			Name:  "asm2pngs",
			Usage: "Convert every block of every assembler file in a directory to PNGs",
			Flags: []cli.Flag{
				modeFlag,
				&cli.StringFlag{
					Name:  "asm-dir",
					Value: "ASM",
					Usage: "directory to read assembler files from",
				},
				&cli.StringFlag{
					Name:  "out-dir",
					Value: "GRAFICOS",
					Usage: "directory for the PNGs",
				},
				&cli.BoolFlag{
					Name:  "prefix-file",
					Usage: "prefix each PNG with the assembler file name to avoid label collisions",
				},
				bgInkFlag,
				layoutFlag,
				widthFlag,
				recursiveFlag,
			},
			Action: func(c *cli.Context) error {
				opts, err := options(c)
				if err != nil {
					return cli.NewExitError(err, 2)
				}
				opts.PrefixFile = c.Bool("prefix-file")

				return run(c, opts, func(conv *cpcgfx.Converter) error {
					return conv.DecodeDir(c.String("asm-dir"), c.String("out-dir"))
				})
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
