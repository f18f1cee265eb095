// Command atconsole is an interactive REPL for sending the commands of the
// bundled command table, by name, to a modem attached over a serial port,
// for manual testing against real hardware.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/northlake-iot/atdrv/at"
	"github.com/northlake-iot/atdrv/engine"
	"github.com/northlake-iot/atdrv/transportdrv"
)

func main() {
	port := flag.String("serial-port", "/dev/ttyUSB0", "Serial port the modem is attached to")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	dialer := transportdrv.SerialDialer{PortName: *port}
	transport, err := dialer.Dial(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "atconsole: open %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer transport.Close()

	table := at.DefaultTable()
	driver := transportdrv.NewSerial(transport)
	eng := engine.NewEngine(table, driver, engine.WithLogger(logger))
	driver.Bind(eng)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go driver.Run(runCtx)

	eng.RegisterUnsolicitedMessage("", func(line string) at.Policy {
		fmt.Printf("<<< %s\n", line)
		return at.Keep
	})

	if err := eng.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "atconsole: %v\n", err)
		os.Exit(1)
	}
	defer eng.Deinit()

	fmt.Println("atconsole — type a command name (e.g. \"CSQ READ\", \"CMGF WRITE 1\"), or \"quit\"")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		runLine(eng, table, scanner.Text())
	}
}

func runLine(eng *engine.Engine, table *at.Table, line string) {
	fields, err := shlex.Split(line)
	if err != nil || len(fields) == 0 {
		return
	}
	if fields[0] == "quit" || fields[0] == "exit" {
		os.Exit(0)
	}

	id, ok := table.IDOf(strings.ToUpper(fields[0]))
	if !ok {
		fmt.Printf("unknown command %q\n", fields[0])
		return
	}

	typ := at.Exec
	var payload string
	if len(fields) > 1 {
		t, ok := at.ParseCommandType(strings.ToUpper(fields[1]))
		if !ok {
			fmt.Printf("unknown command type %q\n", fields[1])
			return
		}
		typ = t
		if len(fields) > 2 {
			payload = strings.Join(fields[2:], " ")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var result string
	if typ == at.Write {
		result, err = eng.SendWrite(ctx, id, payload, 10*time.Second)
	} else {
		result, err = eng.Send(ctx, id, typ, 10*time.Second)
	}
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Printf("%s\n", result)
}
