package bench

import (
	"fmt"
	"io"
)

// Result is the outcome of benchmarking one target
type Result struct {
	Name   string
	State  State
	Dumped Measurement
	Loaded Measurement
	Err    error
}

// Summary collects the results of a run in the order the targets ran
type Summary struct {
	Results []Result
}

// Failed returns the results of targets that failed
func (summary Summary) Failed() []Result {
	failed := []Result{}

	for _, result := range summary.Results {
		if result.State == Failed {
			failed = append(failed, result)
		}
	}

	return failed
}

// Result returns the result for the named target
func (summary Summary) Result(name string) (Result, bool) {
	for _, result := range summary.Results {
		if result.Name == name {
			return result, true
		}
	}

	return Result{}, false
}

// Write prints one line per target
func (summary Summary) Write(w io.Writer) error {
	for _, result := range summary.Results {
		line := fmt.Sprintf("%-10s %-9s", result.Name, result.State)

		switch result.State {
		case Verified:
			line += fmt.Sprintf(" dumped %.2fs loaded %.2fs", result.Dumped.Elapsed.Seconds(), result.Loaded.Elapsed.Seconds())
		case Encoded:
			line += fmt.Sprintf(" dumped %.2fs", result.Dumped.Elapsed.Seconds())
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
