package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/fura/internal/output"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseOutputFormat reads --format and rejects formats outside allowed.
func ParseOutputFormat(cmd *cobra.Command, allowed ...output.Format) (output.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to read --format flag: %w", err)
	}
	format, err := output.ParseFormat(value)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if a == format {
			return format, nil
		}
	}
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, string(a))
	}
	return "", fmt.Errorf("format %q is not supported by %s (supported: %s)", format, cmd.Name(), strings.Join(names, ", "))
}
