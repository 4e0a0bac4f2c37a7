package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

var (
	parseArchive string
	parseMeta    bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse archival references from a file or stdin",
	Long: "Runs the reference parser over each input line and prints the " +
		"normalized codes. With --meta, lines are treated as handwritten " +
		"metadata descriptions instead of structured references.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return eris.Wrap(err, "open input")
			}
			defer f.Close()
			in = f
		}

		parsers, err := loadParsers()
		if err != nil {
			return err
		}

		return parseLines(in, cmd.OutOrStdout(), parsers, parseArchive, parseMeta)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseArchive, "archive", "", "archive code prefix for parsed codes")
	parseCmd.Flags().BoolVar(&parseMeta, "meta", false, "parse handwritten metadata descriptions")
	rootCmd.AddCommand(parseCmd)
}

func parseLines(in io.Reader, out io.Writer, parsers []parser.Parser, archive string, meta bool) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", line, parseLine(line, parsers, archive, meta))
	}
	return eris.Wrap(sc.Err(), "read input")
}

// parseLine resolves one input line to a comma-separated code list, or
// "unparsed" when no convention recognizes it.
func parseLine(line string, parsers []parser.Parser, archive string, meta bool) string {
	var codes []string
	if meta {
		for _, m := range parser.ParseMeta(line) {
			code := strings.Join([]string{archive,
				parser.ParseCode(m.Fund), parser.ParseCode(m.Description), parser.ParseCode(m.CaseStart)}, "-")
			if m.CaseEnd != "" {
				code += ".." + parser.ParseCode(m.CaseEnd)
			}
			codes = append(codes, code)
		}
	} else {
		codes = parser.AutoParse(parser.Item{
			ArchiveCode: archive,
			Volume:      line,
		}, parsers)
	}

	if len(codes) == 0 {
		return "unparsed"
	}
	return strings.Join(codes, ",")
}
