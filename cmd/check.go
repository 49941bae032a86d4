package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blockfold/internal/matcher"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <consolidated-file> <domain>",
		Short: "Check whether a domain would be blocked by a consolidated blocklist",
		Long: `Load a previously consolidated blocklist, index it for fast
membership lookup, and report whether the given domain matches a rule
directly or through one of its ancestor domains.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], args[1])
		},
	}
}

func runCheck(path, domain string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("check: open %s: %w", path, err)
	}
	defer f.Close()

	var domains [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) < 4 || line[0] != '|' || line[1] != '|' || line[len(line)-1] != '^' {
			continue // header/comment/malformed line, not a rule
		}
		d := make([]byte, len(line)-3)
		copy(d, line[2:len(line)-1])
		domains = append(domains, d)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("check: read %s: %w", path, err)
	}

	m := matcher.Build(domains, nil)
	rule, blocked := m.IsBlocked([]byte(domain))
	if blocked {
		fmt.Printf("✅ %s is blocked (matched rule ||%s^)\n", domain, rule)
	} else {
		fmt.Printf("❌ %s is not blocked\n", domain)
	}
	return nil
}
