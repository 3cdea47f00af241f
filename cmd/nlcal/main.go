package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"nlcal/internal/config"
	"nlcal/internal/ics"
	applog "nlcal/internal/log"
	"nlcal/internal/parse"
	"nlcal/internal/rule"
	"nlcal/internal/schedule"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	text       string
	ref        string
	watch      bool
	dumpICS    bool
}

func main() {
	applog.Info("nlcal starting", "version", "0.1.0-dev")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	loc, err := conf.Location()
	if err != nil {
		applog.Error("invalid timezone in config", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	// The reference instant is resolved here, at the process boundary;
	// the parsing core itself never reads the clock.
	ref := time.Now().In(loc)
	if flags.ref != "" {
		ref, err = time.ParseInLocation(time.RFC3339, flags.ref, loc)
		if err != nil {
			applog.Error("invalid -ref value, want RFC3339", err, "ref", flags.ref)
			os.Exit(1)
		}
		ref = ref.In(loc)
	}

	switch {
	case flags.text != "":
		if err := runOnce(ref, flags.text, flags.dumpICS); err != nil {
			applog.Error("parse failed", err, "text", flags.text)
			os.Exit(1)
		}
	case flags.watch:
		runWatch(conf, loc)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -text or -watch")
		flag.Usage()
		os.Exit(2)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/nlcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.text, "text", "", "Parse a single free-text item and print the result")
	flag.StringVar(&cfg.ref, "ref", "", "Reference instant (RFC3339) for relative expressions; default now")
	flag.BoolVar(&cfg.watch, "watch", false, "Re-parse the items file on the configured cron schedule and print the agenda")
	flag.BoolVar(&cfg.dumpICS, "ics", false, "Also print the iCalendar form of the parsed item")

	flag.Parse()

	return cfg
}

// runOnce parses a single item line and prints the structured record, its
// round-trip rendering, and optionally its iCalendar form.
func runOnce(ref time.Time, text string, dumpICS bool) error {
	rec, err := parse.Parse(ref, text)
	if err != nil {
		return err
	}

	fmt.Printf("summary:  %s\n", rec.Summary)
	fmt.Printf("type:     %s\n", rec.Type)
	fmt.Printf("status:   %s\n", rec.Status)
	if rec.When != nil {
		fmt.Printf("start:    %s\n", rec.When.Start.In(ref.Location()).Format(time.RFC3339))
		fmt.Printf("end:      %s\n", rec.When.ResolvedEnd(rec.Type).In(ref.Location()).Format(time.RFC3339))
	}
	if !rec.Tags.Empty() {
		fmt.Printf("tags:     %s\n", strings.Join(rec.Tags.All(), ", "))
	}

	if rec.Recurrence != nil {
		phrase, rerr := parse.RenderRecurrence(*rec.Recurrence)
		if rerr != nil {
			return rerr
		}
		fmt.Printf("repeats:  %s (%s)\n", phrase, rec.Recurrence.RRuleString())

		if rec.When != nil {
			it, ierr := rule.NewIterator(*rec.Recurrence, rec.When.Start)
			if ierr != nil {
				return ierr
			}
			if next, ok := it.NextAfter(ref); ok {
				fmt.Printf("next:     %s\n", next.In(ref.Location()).Format(time.RFC3339))
			}
		}
	}

	rendered, err := parse.Render(&rec, ref)
	if err != nil {
		return err
	}
	fmt.Printf("notation: %s\n", rendered)

	if dumpICS && rec.When != nil {
		payload, eerr := ics.Encode(&rec, "nlcal-preview", ref)
		if eerr != nil {
			return eerr
		}
		fmt.Print(payload)
	}

	return nil
}

// runWatch prints the agenda immediately, then again on every tick of the
// configured cron schedule, until interrupted.
func runWatch(conf *config.Config, loc *time.Location) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		applog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	job := func() { printAgenda(conf, loc) }
	job()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, job); err != nil {
		applog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	applog.Info("nlcal exiting")
}

// printAgenda parses every line of the items file against the current
// instant and prints the occurrences falling inside the horizon. Lines
// that fail to parse are logged and skipped.
func printAgenda(conf *config.Config, loc *time.Location) {
	data, err := os.ReadFile(conf.ItemsFile)
	if err != nil {
		applog.Error("failed to read items file", err, "items_file", conf.ItemsFile)
		return
	}

	now := time.Now().In(loc)
	entries := make([]schedule.Entry, 0)

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, perr := parse.Parse(now, line)
		if perr != nil {
			applog.Warn("skipping unparseable item", "line", i+1, "err", perr)
			continue
		}
		entries = append(entries, schedule.Entry{
			UID:    fmt.Sprintf("item-%d", i+1),
			Record: rec,
		})
	}

	res, err := schedule.Expand(entries, schedule.Config{
		DisplayLocation: loc,
		RangeStart:      now,
		RangeEnd:        now.AddDate(0, 0, conf.HorizonDays),
	})
	if err != nil {
		applog.Error("agenda expansion failed", err)
		return
	}

	occ := res.Occurrences
	sort.Slice(occ, func(i, j int) bool { return occ[i].Start.Before(occ[j].Start) })

	fmt.Printf("agenda %s .. %s (%d items, %d occurrences)\n",
		now.Format("2006-01-02"),
		now.AddDate(0, 0, conf.HorizonDays).Format("2006-01-02"),
		len(entries), len(occ))

	// Occurrences are grouped under week headers; the configured week
	// start decides where a week begins.
	first := conf.WeekStartDay()
	var curWeek time.Time
	for _, o := range occ {
		if w := startOfWeek(o.Start, first); !w.Equal(curWeek) {
			curWeek = w
			fmt.Printf("week of %s\n", w.Format("Mon 02 Jan"))
		}
		fmt.Printf("  %s  %-8s %s\n", o.Start.Format("Mon 02 Jan 15:04"), "["+o.Type.String()+"]", o.Summary)
	}
}

// startOfWeek truncates t to midnight of the most recent day matching
// the configured first day of the week.
func startOfWeek(t time.Time, first time.Weekday) time.Time {
	back := (int(t.Weekday()) - int(first) + 7) % 7
	y, m, d := t.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
