package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/streamsim/acceptance"
	"github.com/sarchlab/streamsim/arbiter"
	"github.com/sarchlab/streamsim/datarecording"
	"github.com/sarchlab/streamsim/monitoring"
	"github.com/sarchlab/streamsim/pipeline"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
	"github.com/spf13/cobra"
)

type runFlags struct {
	numItems     int
	itemBits     int
	streams      int
	packetSize   int
	readLatency  int
	transfers    int
	lastProb     float64
	validProb    float64
	readyProb    float64
	arbiter      string
	packetAtomic bool
	inPipe       string
	outPipe      string
	seed         int64
	maxCycles    uint64
	fifoDepth    int
	widthRatio   int

	record      bool
	recordName  string
	trace       bool
	monitor     bool
	monitorPort int
	openBrowser bool
	parallelID  bool
}

var runArgs runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run random traffic through the fabric and check the result.",
	Long: `Run builds one producer per stream, merges them with an arbiter, ` +
		`passes the merged channel through an input pipeline, the packet ` +
		`former, and an output pipeline, and checks that every transfer ` +
		`arrives in order inside a packet tagged with its stream and length.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSimulation(cmd, runArgs)
	},
}

func init() {
	defaults := acceptance.DefaultOptions()
	f := runCmd.Flags()

	f.IntVar(&runArgs.numItems, "items", defaults.Config.NumItems,
		"Items per transfer.")
	f.IntVar(&runArgs.itemBits, "item-bits", defaults.Config.ItemBits,
		"Bits per item.")
	f.IntVar(&runArgs.streams, "streams", defaults.NumStreams,
		"Number of producers, one stream each.")
	f.IntVar(&runArgs.packetSize, "packet-size", defaults.PacketSize,
		"Largest packet, in transfers.")
	f.IntVar(&runArgs.readLatency, "read-latency", defaults.ReadLatency,
		"Cycles from memory read issue to data.")
	f.IntVar(&runArgs.transfers, "transfers", defaults.TransfersPerSrc,
		"Transfers produced per stream.")
	f.Float64Var(&runArgs.lastProb, "last-prob", defaults.LastProbability,
		"Probability that a produced transfer ends a packet.")
	f.Float64Var(&runArgs.validProb, "valid-prob", defaults.ValidProbability,
		"Probability that a producer offers data on a cycle.")
	f.Float64Var(&runArgs.readyProb, "ready-prob", defaults.ReadyProbability,
		"Probability that the consumer accepts on a cycle.")
	f.StringVar(&runArgs.arbiter, "arbiter", defaults.ArbiterPolicy.String(),
		"Arbitration policy: fixed-priority, round-robin or fcfs.")
	f.BoolVar(&runArgs.packetAtomic, "packet-atomic", false,
		"Hold the grant until the granted producer ends its packet.")
	f.StringVar(&runArgs.inPipe, "in-pipe", "ready-decoupled",
		"Comma separated stage policies before the packet former.")
	f.StringVar(&runArgs.outPipe, "out-pipe", "primed",
		"Comma separated stage policies after the packet former.")
	f.Int64Var(&runArgs.seed, "seed", defaults.Seed,
		"Seed of the traffic and handshake patterns.")
	f.Uint64Var(&runArgs.maxCycles, "max-cycles", defaults.MaxCycles,
		"Give up after this many cycles. Zero means no limit.")
	f.IntVar(&runArgs.fifoDepth, "fifo-depth", 0,
		"Insert a FIFO of this depth before the packet former. Zero means none.")
	f.IntVar(&runArgs.widthRatio, "width-ratio", 0,
		"Split the output into this many narrower transfers and gather them "+
			"back before the consumer. Must divide the item count.")

	f.BoolVar(&runArgs.record, "record", false,
		"Record packets and delivered transfers in an SQLite database.")
	f.StringVar(&runArgs.recordName, "record-name", "",
		"Database name without extension. Empty picks a unique name.")
	f.BoolVar(&runArgs.trace, "trace", false,
		"Log every transfer entering and leaving the fabric.")
	f.BoolVar(&runArgs.monitor, "monitor", false,
		"Serve the monitoring API while the simulation runs.")
	f.IntVar(&runArgs.monitorPort, "monitor-port", 0,
		"Port of the monitoring API. Zero picks a free port.")
	f.BoolVar(&runArgs.openBrowser, "open-browser", false,
		"Open the monitoring API in a browser.")
	f.BoolVar(&runArgs.parallelID, "parallel-id", false,
		"Generate non-deterministic IDs that are cheaper under contention.")

	rootCmd.AddCommand(runCmd)
}

func (f runFlags) options() (acceptance.Options, error) {
	opts := acceptance.DefaultOptions()

	opts.Config.NumItems = f.numItems
	opts.Config.ItemBits = f.itemBits
	opts.NumStreams = f.streams
	opts.PacketSize = f.packetSize
	opts.ReadLatency = f.readLatency
	opts.TransfersPerSrc = f.transfers
	opts.LastProbability = f.lastProb
	opts.ValidProbability = f.validProb
	opts.ReadyProbability = f.readyProb
	opts.PacketAtomic = f.packetAtomic
	opts.Seed = f.seed
	opts.MaxCycles = f.maxCycles
	opts.FIFODepth = f.fifoDepth
	opts.WidthRatio = f.widthRatio

	if err := opts.Config.Validate(); err != nil {
		return opts, err
	}

	var err error

	opts.ArbiterPolicy, err = arbiter.ParsePolicy(f.arbiter)
	if err != nil {
		return opts, err
	}

	opts.InPolicies, err = pipeline.ParsePolicies(f.inPipe)
	if err != nil {
		return opts, fmt.Errorf("in-pipe: %w", err)
	}

	opts.OutPolicies, err = pipeline.ParsePolicies(f.outPipe)
	if err != nil {
		return opts, fmt.Errorf("out-pipe: %w", err)
	}

	return opts, nil
}

func runSimulation(cmd *cobra.Command, f runFlags) (err error) {
	opts, err := f.options()
	if err != nil {
		return err
	}

	if f.parallelID {
		sim.UseParallelIDGenerator()
	}

	defer func() {
		if r := recover(); r != nil {
			cfgErr, ok := r.(*stream.ConfigError)
			if !ok {
				panic(r)
			}

			err = cfgErr
		}
	}()

	engine := sim.NewSerialEngine()
	test := acceptance.NewTest(engine, opts)

	if f.trace {
		logger := stream.NewTransferLogger(os.Stderr, engine)
		test.Fabric.AcceptHook(logger)
	}

	var recorder datarecording.DataRecorder
	if f.record {
		recorder = datarecording.New(f.recordName)
		hook := datarecording.NewPacketHook(recorder, engine)
		test.PacketFormer.AcceptHook(hook)
		test.Fabric.AcceptHook(hook)
	}

	var (
		monitor *monitoring.Monitor
		bar     *monitoring.ProgressBar
	)

	if f.monitor {
		monitor = monitoring.NewMonitor().
			WithPortNumber(f.monitorPort).
			WithOpenBrowser(f.openBrowser)
		monitor.RegisterEngine(engine)
		monitor.RegisterComponent(test.Fabric)
		monitor.RegisterComponent(test.Arbiter)
		monitor.RegisterComponent(test.PacketFormer)

		bar = monitor.CreateProgressBar("Transfers", uint64(test.NumTransfers()))
		test.Fabric.AcceptHook(monitoring.ProgressHook{Bar: bar})

		monitor.StartServer()
	}

	test.Start()

	if err := engine.Run(); err != nil {
		return err
	}

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return err
		}
	}

	test.Report()

	if err := test.Verify(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"passed: %d transfers in %d packets over %d cycles (%.10f s)\n",
		len(test.Sink.Received), len(test.Sink.Packets()),
		test.Fabric.Cycle(), float64(engine.CurrentTime()))

	log.Printf("arbiter %s, in-pipe %q, packet former %d streams of %d, out-pipe %q",
		opts.ArbiterPolicy, f.inPipe, opts.NumStreams, opts.PacketSize, f.outPipe)

	return nil
}
