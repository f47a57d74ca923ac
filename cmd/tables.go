package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	medallion "github.com/rigo1999/medellion-datawarehousing"
	"github.com/spf13/cobra"
)

// NewTablesCommand returns a cobra command listing the tables persisted in
// a layer directory.
func NewTablesCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var data string
	tablesCommand := &cobra.Command{
		Use:   "tables",
		Short: "list the tables persisted in a layer directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := medallion.ListTables(data)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
	tablesCommand.Flags().StringVarP(&data, "data", "d", "data/raw", "Layer directory to list.")
	return tablesCommand
}

// NewShowCommand returns a cobra command printing one persisted table.
func NewShowCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var data, table string
	showCommand := &cobra.Command{
		Use:   "show",
		Short: "print a persisted table",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := medallion.LoadCSV(filepath.Join(data, table+".csv"))
			if err != nil {
				return err
			}
			return medallion.Fprint(stdout, t)
		},
	}
	flags := showCommand.Flags()
	flags.StringVarP(&data, "data", "d", "data/raw", "Layer directory to read from.")
	flags.StringVarP(&table, "table", "t", "", "Table name to print.")
	return showCommand
}

func init() {
	subcommandFns["tables"] = NewTablesCommand
	subcommandFns["show"] = NewShowCommand
}
