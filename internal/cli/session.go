package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomlobby/internal/model"
	"github.com/mcoot/roomlobby/internal/services/session"
)

// liveSession is one connection to the lobby for the lifetime of a command
type liveSession struct {
	ctx       context.Context
	interrupt context.Context // done on SIGINT/SIGTERM
	cancel    context.CancelCauseFunc
	stopAll   []func()
	finished  chan struct{} // closed once the session stops running
	wg        sync.WaitGroup
}

// startSession connects and starts the background reactions. With bounded set
// the session gives up after --timeout.
func startSession(cmd *cobra.Command, out *Output, bounded bool) (*liveSession, error) {
	ls := &liveSession{}

	interrupt, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	ls.interrupt = interrupt
	ls.stopAll = append(ls.stopAll, stopSignals)

	ctx, cancel := context.WithCancelCause(interrupt)
	ls.cancel = cancel
	if bounded && cfg.Timeout > 0 {
		var stopTimer context.CancelFunc
		ctx, stopTimer = context.WithTimeout(ctx, cfg.Timeout)
		ls.stopAll = append(ls.stopAll, stopTimer)
	}
	ls.ctx = ctx

	done, err := app.Connect(ctx, cfg.WebsocketConfig())
	if err != nil {
		ls.release()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.ServerURL, err)
	}
	ls.finished = make(chan struct{})
	go ls.monitor(done)

	ls.wg.Add(2)
	go ls.printNotices(out)
	go ls.loadUser()

	return ls, nil
}

// monitor ends the command when the connection ends on its own
func (ls *liveSession) monitor(done <-chan error) {
	defer close(ls.finished)
	err := <-done
	if err != nil && ls.ctx.Err() == nil {
		logger.Debug("session stopped", slog.Any("error", err))
	}
	ls.cancel(model.ErrConnectionLost)
}

func (ls *liveSession) printNotices(out *Output) {
	defer ls.wg.Done()
	for n := range notices.Notices() {
		out.PrintNotice(n)
		switch n.Code {
		case model.NoticeIdentityRejected:
			ls.cancel(model.ErrIdentityRejected)
		case model.NoticeConnectionLost:
			ls.cancel(model.ErrConnectionLost)
		}
	}
}

func (ls *liveSession) loadUser() {
	defer ls.wg.Done()
	if err := app.LoadUser(ls.ctx); err != nil && ls.ctx.Err() == nil {
		logger.Warn("failed to load authenticated user", slog.Any("error", err))
		ls.cancel(fmt.Errorf("could not load authenticated user: %w", err))
	}
}

// wait blocks until cond holds for the session status
func (ls *liveSession) wait(cond func(session.Status) bool) (session.Status, error) {
	st, err := app.Session.WaitFor(ls.ctx, cond)
	if err != nil {
		return st, ls.err()
	}
	return st, nil
}

// err explains why the session context ended
func (ls *liveSession) err() error {
	cause := context.Cause(ls.ctx)
	switch {
	case cause == nil:
		return nil
	case errors.Is(cause, context.DeadlineExceeded):
		return fmt.Errorf("timed out after %s waiting for the lobby", cfg.Timeout)
	case ls.interrupted():
		return nil
	default:
		return cause
	}
}

func (ls *liveSession) interrupted() bool {
	return ls.interrupt.Err() != nil
}

// stop closes the connection and waits for the background goroutines
func (ls *liveSession) stop() {
	ls.cancel(nil)
	_ = app.Session.Close()
	<-ls.finished
	notices.Close()
	ls.wg.Wait()
	ls.release()
}

func (ls *liveSession) release() {
	for _, f := range ls.stopAll {
		f()
	}
	ls.cancel(nil)
}
