package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chazu/carve/pkg/engine"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

func (a *app) watchCmd() *cobra.Command {
	var meshes bool
	cmd := &cobra.Command{
		Use:     "watch <script>",
		Aliases: []string{"w"},
		Short:   "Re-evaluate a scene script whenever it changes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, args[0], meshes, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&meshes, "meshes", false, "include world-space render buffers in the output")
	return cmd
}

// watch evaluates path once and again after every change until ctx is
// cancelled. Each run happens on its own goroutine; a run overtaken by a
// newer one is discarded by the engine and prints nothing.
func (a *app) watch(ctx context.Context, path string, meshes bool, out io.Writer) error {
	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory: many editors save by replacing the file.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		pending *time.Timer
		fire    = make(chan struct{}, 1)
	)
	run := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep, err := a.evaluate(eng, path, meshes)
			if errors.Is(err, engine.ErrSuperseded) {
				a.log.Debug("discarded superseded evaluation", "script", path)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.log.Error("evaluation failed", "script", path, "error", err)
				return
			}
			if err := a.encode(out, rep); err != nil {
				a.log.Error("writing output", "error", err)
			}
		}()
	}
	defer wg.Wait()

	a.log.Info("watching", "script", path)
	run()
	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			a.log.Debug("script changed", "script", path, "op", ev.Op.String())
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			run()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "error", err)
		}
	}
}
