package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/pkg/config"
)

func newGenConfigCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "genconfig [path]",
		Short: "Generate a starter .vigil.toml",
		Long: `genconfig prints a starter project configuration with every value
commented out. With --write it is saved as .vigil.toml at the given
path instead (refusing to overwrite an existing file).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}

			if !write {
				fmt.Print(content)
				return nil
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			path := filepath.Join(root, ".vigil.toml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Write .vigil.toml instead of printing")

	return cmd
}
