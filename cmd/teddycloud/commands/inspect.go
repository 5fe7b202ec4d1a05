package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/taf"
)

var inspectStyles = struct {
	Label lipgloss.Style
	OK    lipgloss.Style
	Fail  lipgloss.Style
}{
	Label: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f")),
	OK:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f")),
	Fail:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f")),
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <taf-path>",
	Short: "Dump a TAF file's header fields and verify its integrity hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := taf.Open(path)
		if err != nil {
			return err
		}

		row := func(label, value string) {
			fmt.Printf("%s %s\n", inspectStyles.Label.Render(label+":"), value)
		}

		row("path", path)
		row("audio id", fmt.Sprintf("%d (0x%08x)", f.Header.AudioID, f.Header.AudioID))
		row("sha1", hex.EncodeToString(f.Header.SHA1Hash[:]))
		row("payload bytes", fmt.Sprintf("%d", f.Header.NumBytes))
		row("file size", fmt.Sprintf("%d", f.Size))
		row("page count", fmt.Sprintf("%d", f.PageCount()))
		row("chapters", fmt.Sprintf("%d", len(f.Header.TrackPageNums)))

		if err := f.VerifyIntegrity(); err != nil {
			fmt.Printf("%s %v\n", inspectStyles.Label.Render("integrity:"), inspectStyles.Fail.Render(err.Error()))
			return err
		}
		fmt.Printf("%s %s\n", inspectStyles.Label.Render("integrity:"), inspectStyles.OK.Render("ok"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
