package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanshika/dexroute/backend/internal/config"
	"github.com/vanshika/dexroute/backend/internal/domain"
	"github.com/vanshika/dexroute/backend/internal/logging"
	"github.com/vanshika/dexroute/backend/internal/repository"
	"github.com/vanshika/dexroute/backend/internal/service"
)

type cliOptions struct {
	pairsPath string
	jsonOut   bool
	workers   int
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "dexroute",
		Short:         "Find swap routes through a liquidity pair file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if opts.pairsPath == "" {
				opts.pairsPath = os.Getenv("PAIRS_FILE")
			}
			if opts.pairsPath == "" {
				return errors.New("a pair file is required: pass --pairs or set PAIRS_FILE")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.pairsPath, "pairs", "p", "", "YAML or JSON pair file (defaults to $PAIRS_FILE)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log each search to stderr")

	findCmd := &cobra.Command{
		Use:   "find FROM TO",
		Short: "Print the route with the fewest swaps from one asset to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.service(cmd)
			route, err := svc.FindRoute(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return opts.printRoute(cmd.OutOrStdout(), route)
		},
	}

	neighborsCmd := &cobra.Command{
		Use:   "neighbors ASSET",
		Short: "List the assets sharing a pool with ASSET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.service(cmd)
			neighbors, err := svc.Neighbors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"asset":     domain.NormalizeAsset(args[0]),
					"neighbors": neighbors,
				})
			}
			for _, n := range neighbors {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Answer one route request per line (\"FROM TO\") from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			requests, err := readRequests(in)
			if err != nil {
				return err
			}

			router := service.NewBatchRouter(opts.service(cmd), opts.workers)
			results, err := router.FindRoutes(cmd.Context(), requests)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s: %v\n", res.Request.From, res.Request.To, res.Err)
					continue
				}
				if err := opts.printRoute(out, res.Route); err != nil {
					return err
				}
			}
			return nil
		},
	}
	batchCmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "concurrent searches")

	root.AddCommand(findCmd, neighborsCmd, batchCmd)
	return root
}

func (o *cliOptions) service(cmd *cobra.Command) *service.RouteService {
	logger := logging.Discard()
	if o.verbose {
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), config.LoggingConfig{Level: "debug", Format: "text"})
	}
	return service.NewRouteService(repository.NewFileSource(o.pairsPath), nil, logger)
}

func (o *cliOptions) printRoute(w io.Writer, route domain.Route) error {
	if o.jsonOut {
		return json.NewEncoder(w).Encode(route)
	}
	if !route.Found {
		if len(route.Unknown) > 0 {
			unknown := make([]string, 0, len(route.Unknown))
			for _, a := range route.Unknown {
				unknown = append(unknown, string(a))
			}
			_, err := fmt.Fprintf(w, "%s -> %s: no route (unknown asset %s)\n", route.From, route.To, strings.Join(unknown, ", "))
			return err
		}
		_, err := fmt.Fprintf(w, "%s -> %s: no route (%d assets reachable)\n", route.From, route.To, len(route.Visited))
		return err
	}
	path := make([]string, 0, len(route.Path))
	for _, a := range route.Path {
		path = append(path, string(a))
	}
	pools := make([]string, 0, len(route.Hops))
	for _, h := range route.Hops {
		pools = append(pools, string(h.PairID))
	}
	_, err := fmt.Fprintf(w, "%s (%d hops via pools %s)\n", strings.Join(path, " -> "), route.HopCount(), strings.Join(pools, ","))
	return err
}

func readRequests(r io.Reader) ([]service.RouteRequest, error) {
	var requests []service.RouteRequest
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected \"FROM TO\", got %q", line, text)
		}
		requests = append(requests, service.RouteRequest{From: fields[0], To: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, errors.New("no route requests given")
	}
	return requests, nil
}
