package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sea-labs/sea/llm"
)

// NewAskCmd creates the "ask" command: a one-shot completion through the
// configured LLM providers.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send a prompt to the configured LLM provider",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().String("provider", "", "Provider name (default: llm.default_provider)")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	manager, err := llm.NewManager(cfg, llm.NewIrisClient)
	if err != nil {
		return exitError(exitValidation, "%s", err)
	}

	prompt := strings.Join(args, " ")
	provider, _ := cmd.Flags().GetString("provider")

	var resp llm.Response
	if provider != "" {
		resp, err = manager.Complete(cmd.Context(), provider, prompt)
	} else {
		resp, err = manager.Process(cmd.Context(), prompt)
	}
	if err != nil {
		return exitError(exitRuntime, "%s", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	return nil
}
