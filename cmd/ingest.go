package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/rigo1999/medellion-datawarehousing/bronze"
	"github.com/spf13/cobra"
)

// IngestMain is wrapped by NewIngestCommand and only exported for testing
// purposes.
var IngestMain *bronze.Main

// NewIngestCommand returns a new cobra command wrapping IngestMain.
func NewIngestCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	IngestMain = bronze.NewMain()
	ingestCommand := &cobra.Command{
		Use:   "ingest",
		Short: "ingest a CSV file into the raw (bronze) layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return IngestMain.Run()
		},
	}
	flags := ingestCommand.Flags()
	if err := commandeer.Flags(flags, IngestMain); err != nil {
		panic(err)
	}
	return ingestCommand
}

func init() {
	subcommandFns["ingest"] = NewIngestCommand
}
