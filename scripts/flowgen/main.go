package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/gopacket/layers"
)

// Destination ports that commonly appear in lookup tables, so generated
// logs produce tagged as well as untagged records.
var wellKnownPorts = []int{22, 23, 25, 53, 68, 80, 110, 143, 443, 993, 3389}

var protocols = []layers.IPProtocol{
	layers.IPProtocolTCP,
	layers.IPProtocolTCP,
	layers.IPProtocolTCP,
	layers.IPProtocolUDP,
	layers.IPProtocolUDP,
	layers.IPProtocolICMPv4,
	layers.IPProtocolGRE,
	layers.IPProtocolSCTP,
}

func main() {
	outputFile := flag.String("o", "flowlogs.txt", "Output flow log file path")
	lineCount := flag.Int("c", 1000, "Number of lines to generate")
	badRatio := flag.Float64("bad", 0.01, "Fraction of malformed lines")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Generating %d flow log lines into %s...", *lineCount, *outputFile)

	for i := 0; i < *lineCount; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d lines...", i+1)
		}
		if rng.Float64() < *badRatio {
			fmt.Fprintln(w, malformedLine(rng))
			continue
		}
		fmt.Fprintln(w, flowLine(rng))
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("Successfully generated %d lines into %s.", *lineCount, *outputFile)
}

func randomIP(rng *rand.Rand) string {
	return fmt.Sprintf("%d.%d.%d.%d", rng.Intn(256), rng.Intn(256), rng.Intn(256), rng.Intn(256))
}

func flowLine(rng *rand.Rand) string {
	// A small share of NODATA records with absent fields.
	if rng.Intn(50) == 0 {
		return fmt.Sprintf("2 123456789012 eni-%08x - - - 0 1 - - - %d NODATA NODATA",
			rng.Uint32(), time.Now().Unix())
	}

	proto := protocols[rng.Intn(len(protocols))]
	dstPort := wellKnownPorts[rng.Intn(len(wellKnownPorts))]
	if rng.Intn(3) == 0 {
		dstPort = rng.Intn(65535-1024) + 1024
	}
	if proto == layers.IPProtocolICMPv4 {
		dstPort = 0
	}

	start := time.Now().Add(-time.Duration(rng.Intn(3600)) * time.Second).Unix()
	packets := rng.Intn(1000) + 1
	action := "ACCEPT"
	if rng.Intn(10) == 0 {
		action = "REJECT"
	}

	return fmt.Sprintf("2 123456789012 eni-%08x %s %s %d %d %d %d %d %d %d %s OK",
		rng.Uint32(), randomIP(rng), randomIP(rng),
		rng.Intn(65535-1024)+1024, dstPort, int(proto),
		packets, packets*(rng.Intn(1400)+50), start, start+60, action)
}

func malformedLine(rng *rand.Rand) string {
	switch rng.Intn(3) {
	case 0:
		return fmt.Sprintf("2 123456789012 eni-%08x %s", rng.Uint32(), randomIP(rng))
	case 1:
		return fmt.Sprintf("3 123456789012 eni-%08x %s %s 443 443 6 1 1 1 2 ACCEPT OK", rng.Uint32(), randomIP(rng), randomIP(rng))
	default:
		return fmt.Sprintf("2 123456789012 eni-%08x %s %s 443 https 6 1 1 1 2 ACCEPT OK", rng.Uint32(), randomIP(rng), randomIP(rng))
	}
}
