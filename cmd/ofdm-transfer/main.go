// Command ofdm-transfer sends or receives a byte stream over a software
// defined radio using OFDM modulation, mirroring the original C program's
// single-letter flag surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/glv2/ofdm-transfer/internal/ofdmflex"
	"github.com/glv2/ofdm-transfer/ofdmtransfer"
)

func usage() {
	fmt.Println("ofdm-transfer")
	fmt.Println()
	fmt.Println("Usage: ofdm-transfer [options] [filename]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("By default the program is in 'receive' mode.")
	fmt.Println("Use the '-t' option to use the 'transmit' mode.")
	fmt.Println()
	fmt.Println("In 'receive' mode, the samples are received from the radio,")
	fmt.Println("and the decoded data is written either to 'filename' if it")
	fmt.Println("is specified, or to standard output.")
	fmt.Println("In 'transmit' mode, the data to send is read either from")
	fmt.Println("'filename' if it is specified, or from standard input,")
	fmt.Println("and the samples are sent to the radio.")
	fmt.Println()
	fmt.Println("Instead of a real radio transceiver, the 'io' radio type uses")
	fmt.Println("standard input in 'receive' mode, and standard output in")
	fmt.Println("'transmit' mode.")
	fmt.Println("The 'file=path-to-file' radio type reads/writes the samples")
	fmt.Println("from/to 'path-to-file'.")
	fmt.Println()
	fmt.Println("Available radios:")
	ofdmtransfer.PrintAvailableRadios()
	fmt.Println()
	fmt.Println("Available subcarrier modulations:")
	ofdmtransfer.PrintAvailableSubcarrierModulations()
	fmt.Println()
	fmt.Println("Available forward error correction codes:")
	ofdmtransfer.PrintAvailableForwardErrorCodes()
}

// parseFECFlag splits "inner[,outer]" the way the original's
// get_fec_schemes did, defaulting outer to "none" when absent.
func parseFECFlag(s string) (inner, outer string) {
	parts := strings.SplitN(s, ",", 2)
	inner = parts[0]
	outer = "none"
	if len(parts) == 2 {
		outer = parts[1]
	}
	return inner, outer
}

// parseOFDMFlag splits "subcarriers[,cyclic_prefix[,taper]]" the way the
// original's get_ofdm_configuration did, deriving unset trailing values
// from the preceding one.
func parseOFDMFlag(s string) (subcarriers, cyclicPrefix, taper int) {
	parts := strings.Split(s, ",")
	subcarriers, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		cyclicPrefix, _ = strconv.Atoi(parts[1])
	} else {
		cyclicPrefix = subcarriers / 4
	}
	if len(parts) > 2 {
		taper, _ = strconv.Atoi(parts[2])
	} else {
		taper = cyclicPrefix / 4
	}
	return subcarriers, cyclicPrefix, taper
}

func main() {
	bitRate := flag.Uint("b", 38400, "Bit rate of the OFDM transmission")
	ppm := flag.Float64("c", 0, "Correction for the radio clock (ppm)")
	dump := flag.String("d", "", "Dump a copy of the samples sent to or received from the radio")
	fec := flag.String("e", "h128,none", "Inner and outer forward error correction codes to use")
	frequency := flag.Uint64("f", 434000000, "Frequency of the OFDM transmission")
	gain := flag.String("g", "0", "Gain of the radio transceiver")
	help := flag.Bool("h", false, "This help")
	id := flag.String("i", "", "Transfer id (at most 4 bytes)")
	modulation := flag.String("m", "qpsk", "Modulation to use for the subcarriers")
	ofdmConfig := flag.String("n", "64,16,4", "Subcarriers, cyclic prefix length, and taper length")
	offset := flag.Int64("o", 0, "Frequency offset of the transceiver")
	radio := flag.String("r", "", "Radio to use")
	sampleRate := flag.Uint("s", 2000000, "Sample rate to use")
	timeout := flag.Float64("T", 0, "Seconds without a frame before reception stops (0: no timeout)")
	transmit := flag.Bool("t", false, "Use transmit mode")
	verbose := flag.Bool("v", false, "Print debug messages")
	finalDelay := flag.Float64("w", 0, "Wait this many seconds before switching the radio off")

	audio := flag.Bool("a", false, "Use audio mode (stereo PCM in/out instead of raw IQ)")
	profilePath := flag.String("P", "", "Load parameters from a YAML profile; every field the profile sets replaces the command-line value")
	metricsAddr := flag.String("M", "", "Serve Prometheus metrics on this address (disabled if empty)")
	mqttSpec := flag.String("Q", "", "Publish received-frame events to \"broker,topic\" over MQTT (disabled if empty)")

	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		return
	}

	innerFEC, outerFEC := parseFECFlag(*fec)
	subcarriers, cyclicPrefix, taper := parseOFDMFlag(*ofdmConfig)

	direction := ofdmtransfer.Receive
	if *transmit {
		direction = ofdmtransfer.Transmit
	}

	mod, err := ofdmflex.ParseModScheme(*modulation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	inner, err := ofdmflex.ParseFECScheme(innerFEC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	outer, err := ofdmflex.ParseFECScheme(outerFEC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	params := ofdmtransfer.Params{
		Direction:            direction,
		RadioDriver:          *radio,
		SampleRate:           *sampleRate,
		BitRate:              *bitRate,
		Frequency:            *frequency,
		FrequencyOffset:      *offset,
		Gain:                 *gain,
		PPM:                  *ppm,
		SubcarrierModulation: mod,
		Subcarriers:          subcarriers,
		CyclicPrefixLength:   cyclicPrefix,
		TaperLength:          taper,
		InnerFEC:             inner,
		OuterFEC:             outer,
		ID:                   *id,
		DumpPath:             *dump,
		Timeout:              *timeout,
		Audio:                *audio,
		Verbose:              *verbose,
	}

	if flag.NArg() > 0 {
		params.File = flag.Arg(0)
	}

	if *profilePath != "" {
		profile, err := ofdmtransfer.LoadProfile(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		params, err = profile.Apply(params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ofdmtransfer.SetVerbose(params.Verbose)

	if params.Verbose {
		stopStats := ofdmtransfer.StartStatsReporter(time.Minute)
		defer stopStats()
	}

	if *metricsAddr != "" {
		if err := ofdmtransfer.EnableMetrics(*metricsAddr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *mqttSpec != "" {
		brokerAndTopic := strings.SplitN(*mqttSpec, ",", 2)
		if len(brokerAndTopic) != 2 {
			fmt.Fprintln(os.Stderr, "Error: -Q expects \"broker,topic\"")
			os.Exit(1)
		}
		if err := ofdmtransfer.EnableMQTT(brokerAndTopic[0], brokerAndTopic[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	transfer, err := ofdmtransfer.Create(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize transfer: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	go func() {
		<-sigChan
		if ofdmtransfer.IsVerbose() {
			fmt.Fprintln(os.Stderr, "\nStopping (signal received)")
		} else {
			fmt.Fprintln(os.Stderr)
		}
		ofdmtransfer.StopAll()
	}()

	if err := transfer.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	if *finalDelay > 0 {
		// Give the hardware time to send the last samples it buffered.
		time.Sleep(time.Duration(*finalDelay * float64(time.Second)))
	}

	transfer.Close()

	if params.Verbose {
		fmt.Fprintln(os.Stderr)
	}
}
