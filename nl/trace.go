package nl

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"
)

var cachedTracePrefix = ""

func timeToUnix(t time.Time) int64 {
	return int64(t.Sub(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)).Seconds())
}

// boottimeWithRaceCondition has a race condition between the reading of
// /proc/uptime and the call to time.Now(). If, between those two reads, we
// cross a second-granularity time boundary, the result will be off by one.
// Call it repeatedly until two consecutive calls agree.
func boottimeWithRaceCondition() (int64, error) {
	procUptime, err := ioutil.ReadFile("/proc/uptime")
	if err != nil {
		return -1, err
	}
	fields := strings.Split(string(procUptime), " ")
	if len(fields) != 2 {
		return -1, fmt.Errorf("could not split /proc/uptime into two fields")
	}
	uptime, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return -1, fmt.Errorf("could not parse /proc/uptime: %w", err)
	}
	return timeToUnix(time.Now().Add(time.Duration(-1 * uptime * float64(time.Second)))), nil
}

func boottime() (int64, error) {
	var prev, curr int64
	curr, err := boottimeWithRaceCondition()
	if err != nil {
		return curr, err
	}
	for prev != curr {
		prev = curr
		curr, err = boottimeWithRaceCondition()
		if err != nil {
			return curr, err
		}
	}
	return curr, nil
}

// tracePrefix returns a hostname+boottime string that globally
// distinguishes this process's trace tags from any other instance, on
// this host or another, across reboots. Cached: the pair is constant
// for the life of the process.
func tracePrefix() (string, error) {
	if cachedTracePrefix == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return "", err
		}
		bt, err := boottime()
		if err != nil {
			return "", err
		}
		cachedTracePrefix = fmt.Sprintf("%s_%d", hostname, bt)
	}
	return cachedTracePrefix, nil
}

// TraceTag returns a short string correlating a message's (port, seq)
// pair with the process and boot that observed it, for the debug
// personality's log lines. It never fails: a tracePrefix error falls
// back to "unknown" rather than blocking the caller's hook.
func TraceTag(h Header) string {
	prefix, err := tracePrefix()
	if err != nil {
		prefix = "unknown"
	}
	return fmt.Sprintf("%s_%d_%d", prefix, h.PortID, h.Seq)
}
