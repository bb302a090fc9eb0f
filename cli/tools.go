package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sea-labs/sea/tool"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Query and manage the tool registry",
	}
	cmd.PersistentFlags().String("store-path", "", "Path to the custom-tool store (default: ~/.sea/tools.json)")

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInspectCmd())
	cmd.AddCommand(newToolsValidateCmd())
	cmd.AddCommand(newToolsExecCmd())
	cmd.AddCommand(newToolsRegisterCmd())
	cmd.AddCommand(newToolsUnregisterCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered tool categories",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
	cmd.Flags().Bool("json", false, "Emit JSON instead of a table")
	return cmd
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	manager, err := resolveManager(cmd)
	if err != nil {
		return err
	}

	regs := manager.All()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, regs)
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tKIND\tORIGIN\tSTATUS")
	for _, reg := range regs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			reg.Name,
			reg.Descriptor.Kind,
			reg.Origin,
			reg.Status,
		)
	}
	return writer.Flush()
}

func newToolsInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the full descriptor for a tool category",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsInspect,
	}
}

func runToolsInspect(cmd *cobra.Command, args []string) error {
	manager, err := resolveManager(cmd)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	reg, ok := manager.Registration(name)
	if !ok {
		return exitError(exitValidation, "tool %q is not registered", name)
	}
	return printJSON(cmd, reg)
}

func newToolsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name>",
		Short: "Check that a tool category's requirements are met",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsValidate,
	}
}

func runToolsValidate(cmd *cobra.Command, args []string) error {
	manager, err := resolveManager(cmd)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	if err := manager.Validate(cmd.Context(), name); err != nil {
		return exitError(exitValidation, "%s", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tool %s: requirements met\n", name)
	return nil
}

func newToolsExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <name>",
		Short: "Execute a tool category with JSON parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsExec,
	}
	cmd.Flags().String("params", "{}", "Execution parameters as a JSON object")
	return cmd
}

func runToolsExec(cmd *cobra.Command, args []string) error {
	manager, err := resolveManager(cmd)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("params")
	params := make(map[string]any)
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return exitError(exitValidation, "parsing --params: %v", err)
		}
	}

	name := strings.TrimSpace(args[0])
	result, err := manager.Execute(cmd.Context(), name, params)
	if err != nil {
		return exitError(exitRuntime, "%s", err)
	}
	return printJSON(cmd, result)
}

func newToolsRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a custom tool category from a descriptor file",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsRegister,
	}
	cmd.Flags().String("descriptor", "", "Path to a descriptor JSON file (required)")
	_ = cmd.MarkFlagRequired("descriptor")
	return cmd
}

func runToolsRegister(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	if _, builtin := tool.BuiltinRegistration(name); builtin {
		return exitError(exitValidation, "%q is a built-in category and cannot be replaced", name)
	}

	path, _ := cmd.Flags().GetString("descriptor")
	// #nosec G304 -- path supplied explicitly by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return exitError(exitValidation, "reading descriptor %q: %v", path, err)
	}
	var descriptor tool.Descriptor
	if err := json.Unmarshal(data, &descriptor); err != nil {
		return exitError(exitValidation, "parsing descriptor %q: %v", path, err)
	}

	reg := tool.Registration{
		Name:       name,
		Descriptor: descriptor,
		Origin:     tool.OriginCustom,
	}
	if err := store.Upsert(cmd.Context(), reg); err != nil {
		return exitError(exitRuntime, "saving registration: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered tool: %s (%s)\n", name, descriptor.Kind)
	return nil
}

func newToolsUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <name>",
		Short: "Remove a custom tool category",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsUnregister,
	}
}

func runToolsUnregister(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	if _, builtin := tool.BuiltinRegistration(name); builtin {
		return exitError(exitValidation, "%q is a built-in category and cannot be removed", name)
	}
	if err := store.Delete(cmd.Context(), name); err != nil {
		return exitError(exitRuntime, "removing registration: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Unregistered tool: %s\n", name)
	return nil
}
