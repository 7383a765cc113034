package main

import (
	"github.com/spf13/cobra"

	"github.com/Blakeline-was-taken/prog-avancee/src/bench"
	"github.com/Blakeline-was-taken/prog-avancee/src/config"
)

func newWorkerCommand(c *cli) *cobra.Command {
	def := config.DefaultConfig().Worker
	var (
		host string
		port int
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Serve Monte Carlo throws to a MasterSocket bench over TCP",
		Long: `worker listens for masters. Each request line is a point count; the worker
throws that many points and answers with the number inside the quarter circle.
A master ends its session with END. The worker runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("host") {
				cfg.Worker.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Worker.Port = port
			}
			if err := cfg.ValidateWorkerConfig(); err != nil {
				return err
			}
			w := &bench.Worker{Seed: seed}
			return w.ListenAndServe(cmd.Context(), cfg.Worker.Addr())
		},
	}
	f := cmd.Flags()
	f.StringVar(&host, "host", def.Host, "interface to listen on (all when empty)")
	f.IntVarP(&port, "port", "p", def.Port, "TCP port to listen on")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
