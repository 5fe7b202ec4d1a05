package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/cmd/teddycloud/internal/config"
)

// validateContextName checks that a context name is non-empty and safe
// for use as a directory name.
func validateContextName(name string) error {
	if name == "" {
		return fmt.Errorf("context name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("context name %q must not contain path separators", name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("context name %q must not start with '.'", name)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage contexts, each holding one core.yaml.

A context is a named directory holding one core.yaml (content/library
paths and cloud-proxy policy flags). Multiple contexts let one CLI
install switch between, e.g., a dev and a production content root.

Examples:
  teddycloud config list-contexts
  teddycloud config add-context prod
  teddycloud config use-context dev
  teddycloud config current-context
  teddycloud config set dev internal.contentDirFull /var/lib/teddycloud/content
  teddycloud config get dev cloud.cacheContent
  teddycloud config edit dev`,
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		names, err := cfg.ListContexts()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No contexts configured.")
			fmt.Println("Create one with: teddycloud config add-context <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME")
		for _, name := range names {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\n", current, name)
		}
		w.Flush()
		return nil
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Create a new context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]
		if err := validateContextName(name); err != nil {
			return err
		}

		if err := cfg.AddContext(name); err != nil {
			return err
		}
		if err := config.SaveCore(cfg.ContextDir(name), &config.CoreConfig{}); err != nil {
			return fmt.Errorf("write initial core.yaml: %w", err)
		}
		fmt.Printf("Context %q created.\n", name)
		fmt.Printf("Configure it with: teddycloud config set %s <key> <value>\n", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context and its core.yaml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.DeleteContext(name); err != nil {
			return err
		}
		fmt.Printf("Context %q deleted.\n", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		name := args[0]

		if err := cfg.UseContext(name); err != nil {
			return err
		}
		fmt.Printf("Switched to context %q.\n", name)
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:   "current-context",
	Short: "Display the current context name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set.")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <context> <dotted.key> <value>",
	Short: "Set a core.yaml value by its dotted config key",
	Long: `Set a value in a context's core.yaml using its dotted key names
(internal.contentdirfull, cloud.cacheContent, ...).

Examples:
  teddycloud config set dev internal.contentDirFull /var/lib/teddycloud/content
  teddycloud config set dev cloud.cacheToLibrary true
  teddycloud config set dev cloud.ffmpegStreamBufferMs 4000`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctxName, key, value := args[0], args[1], args[2]
		if err := validateContextName(ctxName); err != nil {
			return err
		}

		contextDir := cfg.ContextDir(ctxName)
		if _, err := os.Stat(contextDir); os.IsNotExist(err) {
			return fmt.Errorf("context %q not found", ctxName)
		}

		core, err := config.LoadCore(contextDir)
		if err != nil {
			core = &config.CoreConfig{}
		}
		if err := setCoreField(core, key, value); err != nil {
			return err
		}
		if err := config.SaveCore(contextDir, core); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s (context: %s)\n", key, value, ctxName)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <context> <dotted.key>",
	Short: "Get a core.yaml value by its dotted config key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctxName, key := args[0], args[1]
		if err := validateContextName(ctxName); err != nil {
			return err
		}

		core, err := config.LoadCore(cfg.ContextDir(ctxName))
		if err != nil {
			return err
		}
		val, err := getCoreField(core, key)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit <context>",
	Short: "Open a context's core.yaml in the default editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ctxName := args[0]
		if err := validateContextName(ctxName); err != nil {
			return err
		}

		dir := cfg.ContextDir(ctxName)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("context %q not found", ctxName)
		}
		path := cfg.CorePath(ctxName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.SaveCore(dir, &config.CoreConfig{}); err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		c := exec.Command(editor, path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

func init() {
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configEditCmd)

	rootCmd.AddCommand(configCmd)
}
