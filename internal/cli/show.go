package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/internal/server"
	errs "github.com/matzehuels/loomviz/pkg/errors"
	"github.com/matzehuels/loomviz/pkg/selection"
)

func (c *CLI) showCommand() *cobra.Command {
	var (
		asJSON   bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show the pipeline and step graph of one API",
		Long: `Show prints the interceptor pipeline of an API followed by its processing
steps. A graph with an edge to an unknown step is reported without failing
the command, the way the viewer shows it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			s, err := c.loadSession(cmd.Context(), detailed)
			if err != nil {
				return err
			}
			v, err := s.ctrl.Select(cmd.Context(), index)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c, server.NewViewResponse(v))
			}
			c.printView(v)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include output types and timeouts in step labels")
	return cmd
}

func (c *CLI) printView(v selection.View) {
	fmt.Fprintln(c.out, StyleTitle.Render(v.Title))
	printKeyValue(c.out, "Type", v.API.Type)
	if v.API.RequestType != "" {
		printKeyValue(c.out, "Request", v.API.RequestType)
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, pipelineLine(v.Stages))
	fmt.Fprintln(c.out)

	switch {
	case v.Err != nil:
		printError(c.out, "%s", errs.UserMessage(v.Err))
	case v.Graph == nil || v.Graph.IsEmpty():
		printInfo(c.out, "No processing steps")
	default:
		fmt.Fprintln(c.out, stepTable(v.Graph))
		printDetail(c.out, "%d steps · %d edges · fit %s", v.Graph.Len(), len(v.Graph.Edges), v.Fit)
	}
}

// parseIndex parses a feed index argument.
func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "index must be a number, got %q", arg)
	}
	return i, nil
}
