package cmd

import (
	"io"
	"log"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/rigo1999/medellion-datawarehousing/pipeline"
	"github.com/spf13/cobra"
)

// PipelineMain is wrapped by NewPipelineCommand and only exported for
// testing purposes.
var PipelineMain *pipeline.Main

// NewPipelineCommand returns a new cobra command wrapping PipelineMain.
func NewPipelineCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	PipelineMain = pipeline.NewMain()
	PipelineMain.Stdout = stdout
	pipelineCommand := &cobra.Command{
		Use:   "pipeline",
		Short: "run the demo ETL pipeline over sample sales data",
		Long: `Drives sample sales and product data through all three layers:
bronze ingestion, silver cleaning, and the gold dimension, fact and
summary tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			if err := PipelineMain.Run(); err != nil {
				return err
			}
			log.Println("Done: ", time.Since(start))
			return nil
		},
	}
	flags := pipelineCommand.Flags()
	if err := commandeer.Flags(flags, PipelineMain); err != nil {
		panic(err)
	}
	return pipelineCommand
}

func init() {
	subcommandFns["pipeline"] = NewPipelineCommand
}
