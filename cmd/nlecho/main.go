// Main package in nlecho implements a small command-line demo of the
// nl transport: connect to a caller-chosen protocol, send one request,
// and dispatch the response(s) through the verbose personality.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/netlinkclient/nlcore/nl"
)

func init() {
	// Always prepend the filename and line number.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	protocol  = flag.Int("protocol", 0, "Netlink protocol family to connect to (e.g. NETLINK_ROUTE=0)")
	msgType   = flag.Int("type", 0, "Message type to send in the request header")
	dump      = flag.Bool("dump", false, "Set NLM_F_DUMP on the outbound request")
	debugMode = flag.Bool("debug", false, "Use the debug personality instead of verbose")
	promPort  = flag.String("prom", ":9090", "Prometheus metrics export address and port")

	ctx, cancel = context.WithCancel(context.Background())
)

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)
	defer cancel()

	promSrv := prometheusx.MustStartPrometheus(*promPort)
	defer promSrv.Shutdown(ctx)

	sock := nl.NewSocket()
	rtx.Must(sock.Connect(*protocol), "could not connect netlink socket")
	defer sock.Close()

	personality := nl.Verbose
	if *debugMode {
		personality = nl.Debug
	}
	sock.SetCallbacks(nl.Allocate(personality))

	flags := uint16(nl.REQUEST)
	if *dump {
		flags |= nl.DUMP
	}
	req := nl.AllocateSimple(uint16(*msgType), flags)
	req.SetPortID(nl.AutoPortID)
	req.SetSeq(nl.AutoSeq)

	rtx.Must(nl.AutoSend(sock, req), "could not send request")

	n, err := nl.DispatchDefault(sock)
	rtx.Must(err, "dispatch loop failed")
	log.Printf("nlecho: dispatched %d record(s)", n)
}
