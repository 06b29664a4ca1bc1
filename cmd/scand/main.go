// Command scand drives one or more Wi-Fi radios through nl80211,
// maintaining a periodic scan schedule and exposing the discovered
// BSSes over a read-only HTTP/WebSocket observability surface.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airlayer/scand/internal/config"
	"github.com/airlayer/scand/internal/knownnet"
	"github.com/airlayer/scand/internal/obs"
	"github.com/airlayer/scand/internal/obsweb"
	"github.com/airlayer/scand/internal/scan"
	"github.com/airlayer/scand/internal/transport"
	"github.com/airlayer/scand/pkg/freqset"
	"github.com/airlayer/scand/pkg/ieee80211"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("scand starting")

	cfg := config.Load()

	shutdownTracer, err := obs.InitTracer(ctx)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer(context.Background())
	obs.InitMetrics()

	known, err := knownnet.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open known-networks store: %v", err)
	}
	defer known.Close()

	t, err := transport.Dial()
	if err != nil {
		log.Fatalf("failed to dial nl80211: %v", err)
	}
	defer t.Close()

	wiphys, err := t.GetWiphy(ctx)
	if err != nil {
		log.Fatalf("failed to enumerate wiphys: %v", err)
	}
	radioByWiphy := make(map[uint32]scan.RadioCapabilities, len(wiphys))
	for _, w := range wiphys {
		radioByWiphy[w.Wiphy] = scan.RadioCapabilities{
			ExtCapabilities:   w.ExtendedCapabilities,
			SupportsRandomMAC: w.SupportsRandomMAC && !cfg.DisableMacAddressRandomization,
			MaxSSIDsPerScan:   w.MaxScanSSIDs,
			SupportsDuration:  w.SupportsDuration,
			Bands:             w.Bands,
		}
	}

	ifaces, err := t.GetInterface(ctx)
	if err != nil {
		log.Fatalf("failed to enumerate interfaces: %v", err)
	}
	ifaces = filterInterfaces(ifaces, cfg.Interfaces)

	store := obsweb.NewStore()
	hub := obsweb.NewHub(store, logger)

	// EnableActiveScanning gates whether the engine ever probes for hidden
	// SSIDs: passing a nil source keeps every periodic tick passive.
	var hiddenSource scan.HiddenSSIDSource
	if cfg.EnableActiveScanning {
		hiddenSource = known
	}
	engine := scan.New(t, hiddenSource, logger)
	engine.RankBand5GHzModifier = cfg.RankBandModifier5Ghz
	go engine.Run(ctx)

	var devices []transport.WDEV
	for _, iface := range ifaces {
		radio := radioByWiphy[iface.Wiphy]
		engine.Add(iface.WDEV, radio)
		devices = append(devices, iface.WDEV)
		slog.Info("device registered", "wdev", iface.WDEV, "wiphy", iface.Wiphy)
	}

	if !cfg.DisablePeriodicScan {
		for _, dev := range devices {
			if err := startPeriodic(engine, dev, cfg, store); err != nil {
				slog.Error("failed to start periodic scan", "wdev", dev, "error", err)
			}
		}
	}

	errChan := make(chan error, 1)
	mux := obsweb.NewHandler(store, hub)
	httpServer := &http.Server{Addr: cfg.Addr, Handler: mux}

	go hub.Run(ctx, 2*time.Second)

	go func() {
		slog.Info("observability server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
			errChan <- err
		}
	}()

	slog.Info("scand started, press Ctrl+C to exit")

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errChan:
		slog.Error("fatal error encountered", "error", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	engine.Stop()

	slog.Info("scand stopped")
}

// filterInterfaces keeps only the interfaces named in want, preserving
// ifaces' order. An empty want keeps every interface.
func filterInterfaces(ifaces []transport.InterfaceInfo, want []string) []transport.InterfaceInfo {
	if len(want) == 0 {
		return ifaces
	}
	keep := make(map[string]struct{}, len(want))
	for _, name := range want {
		keep[name] = struct{}{}
	}
	var out []transport.InterfaceInfo
	for _, iface := range ifaces {
		if _, ok := keep[iface.Name]; ok {
			out = append(out, iface)
		}
	}
	return out
}

// startPeriodic starts dev's periodic scan schedule, recording every
// completed scan's results into store for the observability surface.
func startPeriodic(engine *scan.Engine, dev transport.WDEV, cfg *config.Config, store *obsweb.Store) error {
	cb := scan.CallbackFuncs{
		Done: func(err error, bsses []*ieee80211.BSS, _ *freqset.Set) bool {
			if err == nil {
				store.Update(uint64(dev), bsses)
			}
			return false
		},
	}
	return engine.PeriodicStart(dev, cfg.InitialPeriodicScanInterval, cfg.MaximumPeriodicScanInterval, cb)
}
