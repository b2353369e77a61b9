package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gramsight/dashboard/internal/api/workspace"
	"github.com/gramsight/dashboard/internal/core/domain"
)

var (
	scopeFlag   string
	demoFlag    string
	villageFlag string
	adminFlag   bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one aggregation round and print the view as JSON",
	Long: `Run one aggregation round for a session scope and print the result.

The scope's persisted session is used; --demo enters demo mode first.
Use --village for the farmer view or --admin for the village overview.`,
	RunE: runRefresh,
}

var villagesCmd = &cobra.Command{
	Use:   "villages",
	Short: "List the villages visible to a session scope",
	RunE:  runVillages,
}

func init() {
	for _, c := range []*cobra.Command{refreshCmd, villagesCmd} {
		c.Flags().StringVar(&scopeFlag, "scope", "cli", "Session scope to act as")
		c.Flags().StringVar(&demoFlag, "demo", "", "Enter demo mode with this role (farmer|admin)")
	}
	refreshCmd.Flags().StringVar(&villageFlag, "village", "", "Village id for the farmer view")
	refreshCmd.Flags().BoolVar(&adminFlag, "admin", false, "Build the admin overview instead")
	refreshCmd.MarkFlagsMutuallyExclusive("village", "admin")
	refreshCmd.MarkFlagsOneRequired("village", "admin")
}

func openScope(cmd *cobra.Command) (*workspace.Workspace, func(), error) {
	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	ws, err := rt.registry.Get(cmd.Context(), scopeFlag)
	if err != nil {
		rt.close()
		return nil, nil, err
	}
	if demoFlag != "" {
		if err := ws.Session.LoginDemo(cmd.Context(), domain.Role(demoFlag)); err != nil {
			rt.close()
			return nil, nil, err
		}
	}
	if !ws.Session.Current().Authenticated() {
		rt.close()
		return nil, nil, errors.New("scope has no session: pass --demo or sign in through the API first")
	}
	return ws, rt.close, nil
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ws, done, err := openScope(cmd)
	if err != nil {
		return err
	}
	defer done()

	var out any
	if adminFlag {
		view, _ := ws.Admin.Refresh(cmd.Context())
		out = view
	} else {
		view, _ := ws.Farmer.Select(cmd.Context(), villageFlag)
		out = view
	}
	if dest := ws.Nav.Take(); dest != domain.DestinationNone {
		log.Warn().Str("destination", string(dest)).Msg("backend rejected the session")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runVillages(cmd *cobra.Command, _ []string) error {
	ws, done, err := openScope(cmd)
	if err != nil {
		return err
	}
	defer done()

	villages := ws.Farmer.Villages(cmd.Context())
	if villages.IsFallback() {
		fmt.Fprintln(os.Stderr, "backend unavailable, showing demo villages")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISTRICT\tCROP\tRISK")
	for _, v := range villages.Value {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\n", v.ID, v.Name, v.District, v.Crop, v.RiskScore)
	}
	return tw.Flush()
}
