/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/netsolver/InputParameters"
	"github.com/notargets/netsolver/comm"
	"github.com/notargets/netsolver/model_problems/Transport1D"
	"github.com/notargets/netsolver/utils"
)

type SolveRun struct {
	InputFile  string
	OutputFile string
	Workers    int
	Rank       int
	Hosts      []string
	Profile    string
	Perf       bool
	Graph      bool
}

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the transport equation on a grid split across workers",
	Long: `
Solves du/dt + c*du/dx = f(t,x) with f = 0 and unit initial conditions.
Workers run in this process unless --hosts is given, in which case this
process is worker --rank of a network of one process per host address.

netsolver solve -I config.yaml -n 4 -o res.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		sr := &SolveRun{}
		if sr.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			panic(err)
		}
		sr.Workers = viper.GetInt("workers")
		sr.OutputFile = viper.GetString("output")
		sr.Rank, _ = cmd.Flags().GetInt("rank")
		hosts, _ := cmd.Flags().GetString("hosts")
		sr.Hosts = splitHosts(hosts)
		sr.Profile, _ = cmd.Flags().GetString("profile")
		sr.Perf, _ = cmd.Flags().GetBool("perf")
		sr.Graph, _ = cmd.Flags().GetBool("graph")
		ip := processSolveInput(sr)
		if err = RunSolve(context.Background(), sr, ip, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputFile", "I", "", "YAML or JSON file with the solver parameters x, t, X, T, c")
	SolveCmd.Flags().IntP("workers", "n", 2, "number of in-process workers, ignored with --hosts")
	SolveCmd.Flags().StringP("output", "o", "res.csv", "CSV file written by the coordinator")
	SolveCmd.Flags().Int("rank", 0, "rank of this process, used with --hosts")
	SolveCmd.Flags().String("hosts", "", "comma separated host:port of every rank, runs one worker per process")
	SolveCmd.Flags().String("profile", "", "write a profile of the run: cpu or mem")
	SolveCmd.Flags().Bool("perf", false, "count CPU instructions of the solve on this thread (linux)")
	SolveCmd.Flags().BoolP("graph", "g", false, "display the solution rows when done")
	_ = viper.BindPFlag("workers", SolveCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("output", SolveCmd.Flags().Lookup("output"))
}

func splitHosts(hosts string) (addrs []string) {
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); len(h) != 0 {
			addrs = append(addrs, h)
		}
	}
	return
}

func processSolveInput(sr *SolveRun) (ip *InputParameters.SolverParameters) {
	var (
		err error
	)
	if err = sr.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		if len(sr.InputFile) == 0 {
			exampleFile := `
########################################
x: 0.1   # step along x
t: 0.1   # step along t
X: 4     # limit of x
T: 4     # limit of t
c: 1     # coefficient in du/dt + c*du/dx = f(t,x)
########################################
`
			fmt.Printf("Example File:%s\n", exampleFile)
		}
		os.Exit(1)
	}
	if ip, err = InputParameters.ReadSolverParameters(sr.InputFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func (sr *SolveRun) Validate() error {
	if len(sr.InputFile) == 0 {
		return fmt.Errorf("must supply an input parameters file (-I, --inputFile)")
	}
	if len(sr.Hosts) == 0 {
		if sr.Workers < 1 {
			return fmt.Errorf("need at least one worker, have %d", sr.Workers)
		}
	} else if sr.Rank < 0 || sr.Rank >= len(sr.Hosts) {
		return fmt.Errorf("rank %d out of range for %d hosts", sr.Rank, len(sr.Hosts))
	}
	switch sr.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("unknown profile %q, use cpu or mem", sr.Profile)
	}
	return nil
}

// RunSolve executes one solve as described by sr, writing progress to out and
// the result to sr.OutputFile at the coordinator
func RunSolve(ctx context.Context, sr *SolveRun, ip *InputParameters.SolverParameters, out io.Writer) (err error) {
	if err = sr.Validate(); err != nil {
		return
	}
	switch sr.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}
	ip.Print(out)
	var (
		coord     *Transport1D.Solver
		ranks     []int
		calcTimes []time.Duration
		start     = time.Now()
	)
	solve := func() (err error) {
		if len(sr.Hosts) == 0 {
			var solvers []*Transport1D.Solver
			solvers, calcTimes, err = Transport1D.SolveLocal(ctx, sr.Workers, ip,
				Transport1D.UnitBoundary, Transport1D.UnitBoundary, Transport1D.ZeroSource, out)
			if err != nil {
				return
			}
			coord = solvers[0]
			for rank := range solvers {
				ranks = append(ranks, rank)
			}
			return
		}
		var (
			tc *comm.TCPComm
			s  *Transport1D.Solver
			ct time.Duration
		)
		if tc, err = comm.NewTCPComm(sr.Rank, sr.Hosts, comm.DefaultInitTimeout); err != nil {
			return
		}
		defer tc.Close()
		if s, err = Transport1D.NewSolver(tc, ip, out); err != nil {
			return
		}
		if ct, err = s.Solve(Transport1D.UnitBoundary, Transport1D.UnitBoundary, Transport1D.ZeroSource); err != nil {
			return
		}
		ranks, calcTimes = []int{sr.Rank}, []time.Duration{ct}
		if s.IsCoordinator() {
			coord = s
		}
		return
	}
	if sr.Perf {
		var (
			ran          bool
			instructions uint64
			perfErr      error
		)
		instructions, perfErr = countInstructions(func() error {
			ran = true
			err = solve()
			return err
		})
		switch {
		case !ran:
			fmt.Fprintf(out, "instruction count unavailable: %v\n", perfErr)
			err = solve()
		case err == nil && perfErr == nil:
			fmt.Fprintf(out, "CPU instructions: %d\n", instructions)
		case err == nil:
			fmt.Fprintf(out, "instruction count unavailable: %v\n", perfErr)
		}
	} else {
		err = solve()
	}
	if err != nil {
		return
	}
	duration := time.Since(start)
	for i, rank := range ranks {
		fmt.Fprintf(out, "[%d] Time spent: %v; Pure calculation: %v\n",
			rank, duration.Seconds(), calcTimes[i].Seconds())
	}
	fmt.Fprintln(out, utils.GetMemUsage())
	if coord == nil {
		return
	}
	if utils.IsNan(coord.Grid()) {
		fmt.Fprintf(out, "warning: solution contains NaN values\n")
	}
	if err = writeResult(coord, sr.OutputFile); err != nil {
		return
	}
	if sr.Graph {
		PlotRows(coord.Grid(), ip)
	}
	return
}

func writeResult(s *Transport1D.Solver, fileName string) (err error) {
	var f *os.File
	if f, err = os.Create(fileName); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	if err = s.Dump(f); err != nil {
		_ = f.Close()
		return
	}
	return f.Close()
}
