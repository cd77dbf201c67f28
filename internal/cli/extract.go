package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/in-rolls/missing-daughters-of-pols/internal/extract"
)

var (
	extractFile string
	extractHTML bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract child counts from a piece of text",
	Long: `Extract runs the child-count rules over one piece of text and prints
the result as JSON. Useful for checking how a biography will be read.

Reads from --file, or from stdin when no text argument is given.

Example:
  missing-daughters extract "Shrimati Devi has 2 sons and one daughter"
  missing-daughters extract --file bio.html --html
  curl -s https://example.org/member/12 | missing-daughters extract --html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFile, "file", "", "read the text from this file")
	extractCmd.Flags().BoolVar(&extractHTML, "html", false, "treat the input as HTML and extract from its visible text")
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := extractInput(args)
	if err != nil {
		return err
	}

	if extractHTML {
		text, err = extract.VisibleText(text)
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
	}

	counts := extract.Children(text)

	out, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode counts: %w", err)
	}
	fmt.Println(string(out))

	if counts.Sons == nil && counts.Daughters == nil {
		fmt.Fprintln(os.Stderr, "No child counts found")
	}
	return nil
}

func extractInput(args []string) (string, error) {
	if extractFile != "" {
		data, err := os.ReadFile(extractFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", extractFile, err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no input: pass text, --file or pipe to stdin")
	}
	return text, nil
}
