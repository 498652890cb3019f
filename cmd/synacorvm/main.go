// Command synacorvm runs and disassembles Synacor program images,
// with a "run" subcommand that binds stdin/stdout to the VM's IN/OUT
// suspension points and a "disasm" subcommand that prints a listing.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dhconnelly/synacorpp/disasm"
	"github.com/dhconnelly/synacorpp/vm"
)

func main() {
	app := &cli.App{
		Name:  "synacorvm",
		Usage: "run and disassemble Synacor program images",
		Commands: []*cli.Command{
			runCommand(),
			disasmCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a program image with stdin/stdout bound to IN/OUT",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print a trace of each executed instruction to stderr",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: synacorvm run <image>", 2)
			}
			image, err := readImage(c.Args().First())
			if err != nil {
				return cli.Exit(err, 2)
			}

			m := vm.New(image)
			if c.Bool("trace") || os.Getenv("TRACE") != "" {
				m.SetTrace(os.Stderr)
			}

			in := bufio.NewReader(os.Stdin)
			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			for m.State() != vm.Halt {
				if m.State() == vm.Out {
					out.WriteByte(m.Output())
				}
				if m.State() == vm.In {
					out.Flush()
					b, err := in.ReadByte()
					if err != nil {
						break
					}
					m.Input(b)
				}
				if err := m.Step(); err != nil {
					return cli.Exit(err, 1)
				}
			}
			return nil
		},
	}
}

func disasmCommand() *cli.Command {
	return &cli.Command{
		Name:      "disasm",
		Usage:     "print a disassembly listing of a program image",
		ArgsUsage: "<image>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: synacorvm disasm <image>", 2)
			}
			image, err := readImage(c.Args().First())
			if err != nil {
				return cli.Exit(err, 2)
			}
			fmt.Print(disasm.Disasm(image))
			return nil
		},
	}
}

func readImage(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return vm.LoadImage(f)
}
