package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/confdock/settings/backing"
	"github.com/confdock/settings/section"
)

var (
	getFile    string
	getSection string
)

// getCmd prints the sub-document at a section path.
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a section of a settings file",
	Long: `Get extracts the sub-document at a section path and prints it.
The format is inferred from the file extension. An empty --section
prints the whole document.

  settingsctl get --file app.json --section App:User`,
	RunE: func(cmd *cobra.Command, args []string) error {
		codec, path, err := codecForFile(getFile, getSection)
		if err != nil {
			return err
		}

		doc, err := backing.OS().ReadFile(getFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", getFile, err)
		}

		sub, err := codec.Extract(doc, path)
		if errors.Is(err, section.ErrSectionNotFound) {
			return fmt.Errorf("section %q not present in %s", getSection, getFile)
		}
		if err != nil {
			return err
		}
		fmt.Println(string(sub))
		return nil
	},
}

// codecForFile picks the codec by file extension and parses a section
// path string.
func codecForFile(file, sectionPath string) (section.Codec, section.Path, error) {
	if file == "" {
		return nil, nil, errors.New("--file is required")
	}
	codec, ok := section.ByExt(filepath.Ext(file))
	if !ok {
		return nil, nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(file))
	}
	path, err := section.ParsePath(sectionPath)
	if err != nil {
		return nil, nil, err
	}
	return codec, path, nil
}

func init() {
	getCmd.Flags().StringVarP(&getFile, "file", "f", "", "settings file to read")
	getCmd.Flags().StringVarP(&getSection, "section", "s", "", "section path, e.g. App:User")
	getCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(getCmd)
}
