package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/frontdesk-scheduler/internal/fetch"
	"github.com/jwalitptl/frontdesk-scheduler/internal/render"
	"github.com/jwalitptl/frontdesk-scheduler/internal/service/schedule"
	"github.com/jwalitptl/frontdesk-scheduler/internal/session"
)

const prompt = "> "

func watchCmd(configFile *string) *cobra.Command {
	var flags selectionFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive front-desk session",
		Long: "Reads commands from stdin and re-renders the schedule whenever the " +
			"data service answers. Type help for the command list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := flags.query(a.loc, a.today())
			if err != nil {
				return err
			}
			return runWatch(ctx, a, q, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	return cmd
}

// runWatch drives a session from in until quit, EOF or ctx ends. Every
// fetcher state is rendered to out.
func runWatch(ctx context.Context, a *app, q schedule.Query, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f := fetch.New(a.appointments,
		fetch.WithMetrics(a.metrics),
		fetch.WithLogger(a.logger),
		fetch.WithTimeout(a.cfg.Data.FetchTimeout),
	)
	defer f.Close()

	sess := session.New(f,
		session.WithDoctor(q.DoctorID),
		session.WithDate(q.Date),
		session.WithView(q.View),
		session.WithLocation(a.loc),
	)

	var outMu sync.Mutex
	print := func(format string, args ...interface{}) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	updates, unsubscribe := f.Subscribe()
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for st := range updates {
			sched := a.schedules.FromState(ctx, schedule.QueryFromParams(st.Params), st)
			outMu.Lock()
			if err := render.Text(out, sched); err != nil {
				a.logger.Error(err, "Failed to render schedule")
			}
			fmt.Fprint(out, prompt)
			outMu.Unlock()
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	print("%s\n", session.Help)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			err := sess.Execute(line)
			switch {
			case errors.Is(err, session.ErrQuit):
				break loop
			case errors.Is(err, session.ErrHelp):
				print("%s\n%s", session.Help, prompt)
			case err != nil:
				print("error: %v\n%s", err, prompt)
			}
		}
	}

	f.Close()
	wg.Wait()
	return nil
}
