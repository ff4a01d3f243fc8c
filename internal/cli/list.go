package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/loomviz/pkg/descriptor"
)

func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the APIs in the feed",
		Long: `List prints every API of the feed with its index. The index is what
show, render and the viewer use to select an API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			apis := s.store.All()

			if asJSON {
				data, err := descriptor.Marshal(apis)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.out, string(data))
				return err
			}
			if len(apis) == 0 {
				printWarning(c.out, "No APIs in %s", s.store.Source().Name())
				return nil
			}
			fmt.Fprintln(c.out, apiTable(apis, 0, -1))
			printNextStep(c.out, "Inspect one", "loomviz show <index>")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the feed as JSON")
	return cmd
}

// writeJSON prints v as indented JSON.
func writeJSON(c *CLI, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}
