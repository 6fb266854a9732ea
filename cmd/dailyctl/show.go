package main

import (
	"fmt"
	"io"
	"time"

	"github.com/five82/daily/internal/api"
	"github.com/five82/daily/internal/schedule"
)

func printStatus(w io.Writer, status *api.StatusResponse, lines int, now time.Time) {
	applied := status.AppliedURL
	if applied == "" {
		applied = "(none)"
	}
	fmt.Fprintf(w, "Applied:  %s\n", applied)

	if status.ConfigLoaded {
		fmt.Fprintln(w, "Schedule: loaded")
	} else {
		fmt.Fprintln(w, "Schedule: not loaded")
	}

	if o := status.Override; o != nil && o.Active(now) {
		left := o.Expiry.Sub(now).Round(time.Minute)
		fmt.Fprintf(w, "Override: %s (%s left)\n", o.URL, left)
	}
	if target, ok := schedule.Resolve(now, status.Config, status.Override); ok {
		fmt.Fprintf(w, "Target:   %s\n", target.URL)
	}

	logs := status.Logs
	if lines >= 0 && len(logs) > lines {
		logs = logs[len(logs)-lines:]
	}
	if len(logs) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, line := range logs {
		fmt.Fprintln(w, line)
	}
}
