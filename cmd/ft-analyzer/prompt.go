package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// runPaths are the three files one analysis run touches.
type runPaths struct {
	FlowLog string
	Lookup  string
	Output  string
}

// choosePaths asks whether to use custom or default paths. Any choice other
// than "1" falls back to the defaults. An empty answer to a custom path
// keeps the default for that file.
func choosePaths(in io.Reader, out io.Writer, defaults runPaths) (runPaths, error) {
	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	fmt.Fprintln(out, "Choose an option:")
	fmt.Fprintln(out, "1. Enter custom file paths")
	fmt.Fprintln(out, "2. Use default file paths")
	choice, err := readLine("Enter your choice (1 or 2): ")
	if err != nil && err != io.EOF {
		return runPaths{}, err
	}

	switch choice {
	case "1":
		fmt.Fprintln(out, "\nEnter custom file paths:")
		chosen := defaults
		for _, p := range []struct {
			prompt string
			dst    *string
		}{
			{"Enter flow logs file path: ", &chosen.FlowLog},
			{"Enter lookup file path: ", &chosen.Lookup},
			{"Enter output file path: ", &chosen.Output},
		} {
			value, err := readLine(p.prompt)
			if err != nil && err != io.EOF {
				return runPaths{}, err
			}
			if value != "" {
				*p.dst = value
			}
		}
		return chosen, nil
	case "2":
		fmt.Fprintln(out, "\nUsing default file paths:")
	default:
		fmt.Fprintln(out, "Invalid choice. Using default paths.")
	}
	fmt.Fprintf(out, "Flow logs path: %s\nLookup path: %s\nOutput path: %s\n", defaults.FlowLog, defaults.Lookup, defaults.Output)
	return defaults, nil
}
