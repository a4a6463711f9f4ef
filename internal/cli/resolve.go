package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/confdock/settings/backing"
	"github.com/confdock/settings/location"
	"github.com/confdock/settings/section"
)

var (
	resolveCandidates  []string
	resolveDefaultName string
	resolveFormat      string
)

// resolveCmd shows which candidate path an instance would win.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the file path a candidate set resolves to",
	Long: `Resolve ranks candidate locations the way the engine does at
configuration-build time and prints the winner.

Candidates are given as path=priority pairs, highest priority first:

  settingsctl resolve -c /etc/myapp/settings=10 -c ./settings=0 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, ok := section.ByExt(resolveFormat)
		if !ok {
			return fmt.Errorf("unknown format %q (json, yaml, xml)", resolveFormat)
		}

		candidates := make([]location.Candidate, 0, len(resolveCandidates))
		for _, spec := range resolveCandidates {
			cand, err := parseCandidate(spec)
			if err != nil {
				return err
			}
			candidates = append(candidates, cand)
		}

		resolver := location.NewResolver(backing.OS(), nil)
		path, err := resolver.Resolve(candidates, resolveDefaultName, codec.Ext())
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// parseCandidate splits "path=priority"; a bare path gets priority 0.
func parseCandidate(spec string) (location.Candidate, error) {
	path, prioStr, found := strings.Cut(spec, "=")
	if path == "" {
		return location.Candidate{}, fmt.Errorf("candidate %q has an empty path", spec)
	}
	if !found {
		return location.Candidate{Path: path}, nil
	}
	prio, err := strconv.Atoi(prioStr)
	if err != nil {
		return location.Candidate{}, fmt.Errorf("candidate %q: bad priority: %w", spec, err)
	}
	return location.Candidate{Path: path, Priority: prio}, nil
}

func init() {
	resolveCmd.Flags().StringArrayVarP(&resolveCandidates, "candidate", "c", nil,
		"candidate as path=priority (repeatable)")
	resolveCmd.Flags().StringVar(&resolveDefaultName, "default-name", "settings",
		"file name used when no candidates are given")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json",
		"format whose extension is appended to extensionless paths")
	rootCmd.AddCommand(resolveCmd)
}
