package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/parallax/internal/adapter"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write workflow instructions for an external editor",
	Long: `Formats the standard workflow instructions for a supported editor and
writes them where that tool expects them. Files carrying managed-block
markers are spliced in place on repeat runs.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().String("tool", "", "tool id to configure")
	configureCmd.Flags().Bool("list", false, "list supported tools")
	configureCmd.Flags().Bool("stdout", false, "print the formatted file instead of writing it")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	list, _ := cmd.Flags().GetBool("list")
	if list {
		for _, id := range adapter.IDs() {
			f, _ := adapter.Lookup(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, f.ToolName())
		}
		return nil
	}

	toolID, _ := cmd.Flags().GetString("tool")
	if toolID == "" {
		return fmt.Errorf("either --tool or --list is required")
	}
	formatter, err := adapter.Lookup(toolID)
	if err != nil {
		return err
	}

	file, err := formatter.Format(adapter.WorkflowRecord())
	if err != nil {
		return fmt.Errorf("formatting for %s: %w", toolID, err)
	}

	if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
		fmt.Fprint(cmd.OutOrStdout(), file.Content)
		return nil
	}

	path := filepath.Join(projectRoot(cmd), filepath.FromSlash(file.Path))
	if err := writeInstructionFile(path, file.Content); err != nil {
		return err
	}
	printer(cmd).Infof("Wrote %s instructions to %s", formatter.ToolName(), path)
	return nil
}

// writeInstructionFile writes formatted content, splicing over a previous
// managed block when the target already contains one and appending when
// the file exists without markers.
func writeInstructionFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte(content), 0o644)
	}
	if err != nil {
		return err
	}

	if !strings.Contains(content, adapter.BlockStart) {
		// Formats without managed blocks own their whole file.
		return os.WriteFile(path, []byte(content), 0o644)
	}

	text := string(existing)
	start := strings.Index(text, adapter.BlockStart)
	end := strings.Index(text, adapter.BlockEnd)
	if start >= 0 && end > start {
		rest := strings.TrimPrefix(text[end+len(adapter.BlockEnd):], "\n")
		updated := strings.TrimRight(text[:start]+content+rest, "\n") + "\n"
		return os.WriteFile(path, []byte(updated), 0o644)
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return os.WriteFile(path, []byte(text+"\n"+content), 0o644)
}
