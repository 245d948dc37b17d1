package orchestrator

import (
	"context"
	"net"
	"sync"
	"time"

	"netrecon/internal/core/identify"
	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
	"netrecon/internal/core/probe"
	"netrecon/internal/core/qos"
	"netrecon/internal/core/scanerr"
)

// Deps bundles the capabilities Run needs beyond Config: the shared
// listener and raw sockets (internal/core/netraw, internal/core/listener),
// and the three external adapters of spec.md §4.7. Logger/Clock/Sink
// default to no-ops/time.Now/no-op when left nil, so callers only
// supply what they use.
type Deps struct {
	Listener *listener.Listener
	TCPSock  netraw.RawSocket
	UDPSock  netraw.RawSocket
	ICMPSock netraw.RawSocket
	LocalIP  net.IP

	Logger Logger
	Clock  Clock
	Sink   ResultSink
}

func (d *Deps) logger() Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return nopLogger{}
}

func (d *Deps) clock() Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return systemClock{}
}

// classificationEvent is what a dispatched probe hands back to the
// single aggregator goroutine that owns the ScanResult (spec.md §5:
// "a single aggregator task ... fed by a bounded channel of
// classification events").
type classificationEvent struct {
	port      int
	technique model.Technique
	result    probe.Result
	err       error
}

// identificationEvent is the aggregator's own follow-up work: the
// result of a Service Identifier job scheduled on a port's first
// transition to Open.
type identificationEvent struct {
	port    int
	outcome identify.Outcome
}

// Run drives a full scan of every endpoint to completion: work-item
// generation, admission control, per-probe deadlines, merge-by-
// precedence, and scheduling the Service Identifier on a port's first
// Open transition (spec.md §4.5). spec.md §3 defines a Scan Result as
// single-target, so Run returns one *model.ScanResult per endpoint, in
// endpoint order. Concurrency and rate limiting are shared across all
// endpoints of one Run call; the shared capture Listener is started
// once and watched for the whole run. If the capture handle is lost,
// the endpoint being scanned when that happened keeps its partial
// result, no further endpoints are started, and Run returns every
// result gathered so far plus a fatal *scanerr.Error. All other
// probe-level errors are absorbed into per-port evidence and never
// surfaced here.
func Run(ctx context.Context, endpoints []model.Endpoint, ports []int, techniques []model.Technique, cfg Config, deps *Deps) ([]*model.ScanResult, error) {
	if cfg.Rand == nil {
		return nil, scanerr.New(scanerr.KindConfig, "orchestrator.Run", errNilRand)
	}
	if len(endpoints) == 0 {
		return nil, scanerr.New(scanerr.KindConfig, "orchestrator.Run", errNoEndpoints)
	}

	if cfg.Signatures == nil {
		if sigs, err := identify.DefaultSignatures(); err == nil {
			cfg.Signatures = sigs
		}
	}
	if cfg.Classifier == nil {
		cfg.Classifier = identify.HeuristicClassifier
	}

	concurrency := resolveConcurrency(cfg.Concurrency)
	rate := resolveRate(cfg.Rate, cfg.Rand)
	sem := qos.NewSemaphore(concurrency)
	limiter := qos.NewRateLimiter(rate, deps.clock().Now)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if deps.Listener != nil {
		go deps.Listener.Run(scanCtx)
		go func() {
			select {
			case err := <-deps.Listener.Lost():
				deps.logger().Log(LevelError, "capture handle lost", map[string]interface{}{"error": err.Error()})
				cancel()
			case <-scanCtx.Done():
			}
		}()
	}

	if cfg.RandomDelay && cfg.MaxDelay > 0 {
		delay := time.Duration(cfg.Rand.Int63n(int64(cfg.MaxDelay)))
		select {
		case <-time.After(delay):
		case <-scanCtx.Done():
		}
	}

	probeDeps := &probe.Deps{
		Listener:      deps.Listener,
		TCPSock:       deps.TCPSock,
		UDPSock:       deps.UDPSock,
		ICMPSock:      deps.ICMPSock,
		LocalIP:       deps.LocalIP,
		RNG:           cfg.Rand,
		BaseTTL:       cfg.BaseTTL,
		TTLJitter:     cfg.TTLJitter,
		MimicProtocol: cfg.MimicProtocol,
		MimicVariant:  cfg.MimicVariant,
		FragMinSize:   cfg.FragMinSize,
		FragMaxSize:   cfg.FragMaxSize,
		FragFirstMin:  cfg.FragFirstMin,
		FragTwoOnly:   cfg.FragTwoOnly,
		FragMinDelay:  cfg.FragMinDelay,
		FragMaxDelay:  cfg.FragMaxDelay,
		FragTimeout:   cfg.FragTimeout,
		TunnelNonce:   cfg.TunnelNonce,
		LookupDomain:  cfg.LookupDomain,
		DNSServer:     cfg.DNSServer,
	}

	results := make([]*model.ScanResult, 0, len(endpoints))
	for _, endpoint := range endpoints {
		start := deps.clock().UTCNow()
		result, fatalErr := scanEndpoint(ctx, scanCtx, endpoint, ports, techniques, cfg, deps, probeDeps, sem, limiter, start)
		results = append(results, result)
		if fatalErr != nil {
			return results, fatalErr
		}
	}

	return results, nil
}

// scanEndpoint runs every (technique, port) work item for one
// endpoint against the shared semaphore/limiter/listener, owns that
// endpoint's ScanResult through a single aggregator goroutine, and
// reports a fatal error if the capture handle was lost while this
// endpoint was being scanned.
func scanEndpoint(ctx, scanCtx context.Context, endpoint model.Endpoint, ports []int, techniques []model.Technique, cfg Config, deps *Deps, probeDeps *probe.Deps, sem *qos.Semaphore, limiter *qos.RateLimiter, start time.Time) (*model.ScanResult, error) {
	result := model.NewScanResult(endpoint.Target, endpoint.IP.String(), techniques, start)

	identifyDeps := &identify.Deps{
		Signatures:     cfg.Signatures,
		Classifier:     cfg.Classifier,
		TimeoutConnect: cfg.TimeoutConnect,
		TimeoutBanner:  cfg.TimeoutBanner,
		ExpectedHost:   endpoint.Target,
	}

	concurrency := resolveConcurrency(cfg.Concurrency)
	events := make(chan classificationEvent, concurrency*2)
	identEvents := make(chan identificationEvent, concurrency)

	var probeWG sync.WaitGroup
	var identWG sync.WaitGroup
	var aggWG sync.WaitGroup

	// Aggregator: the sole writer of ScanResult merges (spec.md §5),
	// and the only place that decides whether a port's first Open
	// transition should schedule identification.
	identified := make(map[int]bool)
	aggWG.Add(1)
	go func() {
		defer aggWG.Done()
		for events != nil || identEvents != nil {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				handleClassification(result, ev, deps)
				pr := result.Port(ev.port)
				if pr != nil && pr.IsOpenOrOpenFiltered() && !identified[ev.port] {
					identified[ev.port] = true
					identWG.Add(1)
					go runIdentification(scanCtx, identifyDeps, endpoint, ev.port, identEvents, &identWG)
				}
			case ev, ok := <-identEvents:
				if !ok {
					identEvents = nil
					continue
				}
				applyIdentification(result, ev)
			}
		}
	}()

	order := ports
	if cfg.Evasion {
		order = shuffledPorts(ports, cfg.Rand)
	}

	for _, tech := range techniques {
		strategy := probe.Dispatch(tech, probeDeps)
		if strategy == nil {
			continue
		}
		for _, port := range order {
			probeWG.Add(1)
			go func(tech model.Technique, port int, strategy probe.Strategy) {
				defer probeWG.Done()

				if err := sem.Acquire(scanCtx); err != nil {
					return
				}
				defer sem.Release()
				if err := limiter.Wait(scanCtx); err != nil {
					return
				}

				result.IncrPacketsSent()
				res, err := strategy.Probe(scanCtx, endpoint, port, cfg.Timeout)
				if err == nil {
					result.IncrSuccessfulScans()
				}
				events <- classificationEvent{port: port, technique: tech, result: res, err: err}
			}(tech, port, strategy)
		}
	}

	probeWG.Wait()
	close(events)
	identWG.Wait()
	close(identEvents)
	aggWG.Wait()

	result.Finish(deps.clock().UTCNow())

	if scanCtx.Err() != nil && ctx.Err() == nil {
		result.FatalError = scanerr.New(scanerr.KindCaptureLost, "listener", scanCtx.Err()).Error()
		if deps.Sink != nil {
			deps.Sink.Submit(ctx, result)
		}
		return result, scanerr.New(scanerr.KindCaptureLost, "orchestrator.Run", scanCtx.Err())
	}

	if deps.Sink != nil {
		if err := deps.Sink.Submit(ctx, result); err != nil {
			deps.logger().Log(LevelWarn, "result sink submit failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return result, nil
}

func handleClassification(result *model.ScanResult, ev classificationEvent, deps *Deps) {
	if ev.technique == model.TechUDP {
		result.MergeUDP(ev.port, ev.result.Status)
	} else {
		result.MergeTCP(ev.port, ev.technique, ev.result.Status)
	}
	if len(ev.result.Evidence.RawReply) > 0 {
		result.AttachBanner(ev.port, ev.result.Evidence.RawReply)
	}
	if ev.result.Evidence.Cert != nil {
		result.AttachCert(ev.port, identify.InspectCert(ev.result.Evidence.Cert))
		for _, a := range identify.CertAnomalies(ev.result.Evidence.Cert, "", deps.clock().Now()) {
			result.AddAnomaly(ev.port, a)
		}
	}
	if ev.err != nil {
		deps.logger().Log(LevelDebug, "probe transport error", map[string]interface{}{
			"port": ev.port, "technique": string(ev.technique), "error": ev.err.Error(),
		})
	}
}

func runIdentification(ctx context.Context, deps *identify.Deps, endpoint model.Endpoint, port int, out chan<- identificationEvent, wg *sync.WaitGroup) {
	defer wg.Done()
	outcome := identify.Identify(ctx, deps, endpoint, port, nil, nil)
	select {
	case out <- identificationEvent{port: port, outcome: outcome}:
	case <-ctx.Done():
	}
}

func applyIdentification(result *model.ScanResult, ev identificationEvent) {
	if len(ev.outcome.Banner) > 0 {
		result.AttachBanner(ev.port, ev.outcome.Banner)
	}
	if ev.outcome.Cert != nil {
		result.AttachCert(ev.port, ev.outcome.Cert)
	}
	if ev.outcome.Service != "" || ev.outcome.Version != "" || len(ev.outcome.Details) > 0 {
		result.AttachService(ev.port, ev.outcome.Service, ev.outcome.Version, ev.outcome.Details)
	}
	for _, a := range ev.outcome.Anomalies {
		result.AddAnomaly(ev.port, a)
	}
}

func shuffledPorts(ports []int, rng interface{ Intn(int) int }) []int {
	shuffled := append([]int(nil), ports...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
