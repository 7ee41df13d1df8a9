package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// SleepCommand pauses a simulated user instead of sending a request.
const SleepCommand = "Sleep"

var ErrInvalidSleep = errors.New("invalid sleep duration")

// Step is one line of a scenario: either a request to send or a pause.
type Step struct {
	Request string
	Delay   time.Duration
}

func (s Step) IsSleep() bool {
	return s.Request == ""
}

// ParseScenario reads one step per line. Blank lines and lines starting with
// "#" are skipped. "Sleep <seconds>" accepts fractional seconds.
func ParseScenario(r io.Reader) ([]Step, error) {
	var steps []Step

	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] != SleepCommand {
			steps = append(steps, Step{Request: line})
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: missing seconds", lineNo, ErrInvalidSleep)
		}
		secs, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrInvalidSleep, fields[1])
		}
		steps = append(steps, Step{Delay: time.Duration(secs * float64(time.Second))})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return steps, nil
}

// LoadScenario parses the scenario file at path.
func LoadScenario(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	steps, err := ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}
