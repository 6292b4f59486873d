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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/netsolver/comm"
)

// LatencyCmd represents the latency command
var LatencyCmd = &cobra.Command{
	Use:   "latency",
	Short: "Measure the time to pass one value from rank 0 to rank 1",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err   error
			rank  int
			hosts string
		)
		rank, _ = cmd.Flags().GetInt("rank")
		hosts, _ = cmd.Flags().GetString("hosts")
		addrs := splitHosts(hosts)
		if len(addrs) == 0 {
			err = LocalLatency(os.Stdout)
		} else {
			err = TCPLatency(rank, addrs, os.Stdout)
		}
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(LatencyCmd)
	LatencyCmd.Flags().Int("rank", 0, "rank of this process, used with --hosts")
	LatencyCmd.Flags().String("hosts", "", "comma separated host:port of every rank, at least two")
}

const latencyTag = 0

// MeasureLatency sends one value from rank 0 to rank 1, other ranks do nothing.
// Only rank 0 reports a duration.
func MeasureLatency(c comm.Communicator) (latency time.Duration, err error) {
	if c.Size() < 2 {
		return 0, fmt.Errorf("run more than 1 node, have %d", c.Size())
	}
	blob := []float64{0}
	switch c.Rank() {
	case 0:
		start := time.Now()
		if err = c.Send(1, latencyTag, blob); err != nil {
			return
		}
		latency = time.Since(start)
	case 1:
		err = c.Recv(0, latencyTag, blob)
	}
	return
}

func LocalLatency(out io.Writer) (err error) {
	var (
		ln      = comm.NewLocalNetwork(2)
		g       errgroup.Group
		latency time.Duration
	)
	defer ln.Close()
	g.Go(func() (err error) {
		latency, err = MeasureLatency(ln.Comm(0))
		return
	})
	g.Go(func() (err error) {
		_, err = MeasureLatency(ln.Comm(1))
		return
	})
	if err = g.Wait(); err != nil {
		return
	}
	fmt.Fprintf(out, "Net latency: %v\n", latency.Seconds())
	return
}

func TCPLatency(rank int, addrs []string, out io.Writer) (err error) {
	if len(addrs) < 2 {
		return fmt.Errorf("run more than 1 node, have %d", len(addrs))
	}
	var (
		tc      *comm.TCPComm
		latency time.Duration
	)
	if tc, err = comm.NewTCPComm(rank, addrs, comm.DefaultInitTimeout); err != nil {
		return
	}
	defer tc.Close()
	if latency, err = MeasureLatency(tc); err != nil {
		return
	}
	if rank == 0 {
		fmt.Fprintf(out, "Net latency: %v\n", latency.Seconds())
	}
	return
}
