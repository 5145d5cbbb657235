package main

import (
	"fmt"
	"strings"
)

type command int

const (
	cmdEncrypt command = iota + 1
	cmdDecrypt
	cmdHelp
	cmdVersion
)

// Options holds the parsed command line
type Options struct {
	Command command
	Input   string
	Output  string
	Delete  bool
	Verbose bool
}

func parseArgs(args []string) (Options, error) {
	var opts Options

	if len(args) < 1 {
		return opts, fmt.Errorf("no command specified")
	}

	switch args[0] {
	case "encrypt", "--encrypt", "-e":
		opts.Command = cmdEncrypt
	case "decrypt", "--decrypt", "-d":
		opts.Command = cmdDecrypt
	case "help", "--help", "-h":
		opts.Command = cmdHelp
		return opts, nil
	case "version", "--version":
		opts.Command = cmdVersion
		return opts, nil
	default:
		return opts, fmt.Errorf("provide a valid action: 'encrypt' or 'decrypt'")
	}

	for i := 1; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")

		switch name {
		case "-i", "--input", "-o", "--output":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
			if value == "" {
				return opts, fmt.Errorf("%s requires a value", name)
			}
			if name == "-i" || name == "--input" {
				opts.Input = value
			} else {
				opts.Output = value
			}
		case "--delete":
			if hasValue {
				return opts, fmt.Errorf("--delete takes no value")
			}
			opts.Delete = true
		case "-v", "--verbose":
			opts.Verbose = true
		default:
			return opts, fmt.Errorf("unknown option: %s", args[i])
		}
	}

	if opts.Input == "" {
		return opts, fmt.Errorf("missing --input")
	}
	if opts.Output == "" {
		return opts, fmt.Errorf("missing --output")
	}

	return opts, nil
}
