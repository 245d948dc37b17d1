package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"netrecon/internal/adapters"
	"netrecon/internal/core/identify"
	"netrecon/internal/core/listener"
	"netrecon/internal/core/model"
	"netrecon/internal/core/netraw"
	"netrecon/internal/core/orchestrator"
)

type scanFlags struct {
	ports      string
	top10      bool
	top100     bool
	scanTypes  string
	evasion    bool
	enhanced   bool
	mimicOS    string
	ttlJitter  int
	mimicProto string
	mimicVar   string
	useTor     bool

	dnsTunnel    bool
	icmpTunnel   bool
	dnsServer    string
	lookupDomain string

	concurrency    int
	rate           int
	timeout        time.Duration
	timeoutConnect time.Duration
	timeoutBanner  time.Duration

	randomDelay bool
	maxDelay    time.Duration

	fragMinSize  int
	fragMaxSize  int
	fragFirstMin int
	fragTwoOnly  bool
	fragMinDelay time.Duration
	fragMaxDelay time.Duration
	fragTimeout  time.Duration

	verbose    bool
	jsonOut    bool
	prettyJSON bool
	outputPath string
	color      bool

	memoryOnly  bool
	logFile     string
	encryptLogs bool

	useRamdisk   bool
	ramdiskSize  string
	ramdiskMount string

	secureDelete bool
	deletePasses int

	fixLogFile string

	signatures string
}

var flags scanFlags

func registerScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVarP(&flags.ports, "ports", "p", "1-1000", "comma-separated ports and dash-ranges")
	f.BoolVar(&flags.top10, "top-10", false, "scan the top 10 well-known ports")
	f.BoolVar(&flags.top100, "top-100", false, "scan the top 100 well-known ports")
	f.StringVarP(&flags.scanTypes, "scan-types", "s", "syn", "comma list of techniques")
	f.BoolVar(&flags.evasion, "evasion", false, "enable the basic evasion profile")
	f.BoolVar(&flags.enhanced, "enhanced-evasion", false, "enable the enhanced evasion profile")
	f.StringVar(&flags.mimicOS, "mimic-os", "", "windows, linux, macos, or random")
	f.IntVar(&flags.ttlJitter, "ttl-jitter", 0, "TTL jitter bound, 1-5")
	f.StringVar(&flags.mimicProto, "mimic-protocol", "", "protocol for MIMIC probes")
	f.StringVar(&flags.mimicVar, "protocol-variant", "", "protocol variant for MIMIC probes")
	f.BoolVar(&flags.useTor, "use-tor", false, "route TCP through a local Tor SOCKS proxy if available")

	f.BoolVar(&flags.dnsTunnel, "dns-tunnel", false, "enable the DNS-tunnel technique")
	f.BoolVar(&flags.icmpTunnel, "icmp-tunnel", false, "enable the ICMP-tunnel technique")
	f.StringVar(&flags.dnsServer, "dns-server", "", "DNS server for dns-tunnel")
	f.StringVar(&flags.lookupDomain, "lookup-domain", "", "subdomain base for dns-tunnel")

	f.IntVar(&flags.concurrency, "concurrency", 0, "max in-flight probes, 0 = auto")
	f.IntVar(&flags.rate, "rate", 0, "packets per second, 0 = evasive random burst")
	f.DurationVar(&flags.timeout, "timeout", 3*time.Second, "per-probe total deadline")
	f.DurationVar(&flags.timeoutConnect, "timeout-connect", 2*time.Second, "TCP connect deadline")
	f.DurationVar(&flags.timeoutBanner, "timeout-banner", 2*time.Second, "banner-read deadline")

	f.BoolVar(&flags.randomDelay, "random-delay", false, "sleep a random amount before scanning")
	f.DurationVar(&flags.maxDelay, "max-delay", 0, "upper bound for --random-delay")

	f.IntVar(&flags.fragMinSize, "frag-min-size", 8, "minimum fragment size")
	f.IntVar(&flags.fragMaxSize, "frag-max-size", 24, "maximum fragment size")
	f.IntVar(&flags.fragFirstMin, "frag-first-min", 16, "minimum first-fragment size")
	f.BoolVar(&flags.fragTwoOnly, "frag-two-only", false, "force exactly two fragments")
	f.DurationVar(&flags.fragMinDelay, "frag-min-delay", 5*time.Millisecond, "minimum inter-fragment delay")
	f.DurationVar(&flags.fragMaxDelay, "frag-max-delay", 20*time.Millisecond, "maximum inter-fragment delay")
	f.DurationVar(&flags.fragTimeout, "frag-timeout", 3*time.Second, "overall FRAG probe deadline")

	f.BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	f.BoolVar(&flags.jsonOut, "json", false, "emit JSON instead of a text report")
	f.BoolVar(&flags.prettyJSON, "pretty-json", false, "indent JSON output")
	f.StringVarP(&flags.outputPath, "output", "o", "", "write output to this path instead of stdout")
	f.BoolVar(&flags.color, "color", true, "colorize text report output")

	f.BoolVar(&flags.memoryOnly, "memory-only", false, "keep scan state in memory only")
	f.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	f.BoolVar(&flags.encryptLogs, "encrypt-logs", false, "encrypt log file contents at rest")

	f.BoolVar(&flags.useRamdisk, "use-ramdisk", false, "stage scratch files on a tmpfs ramdisk")
	f.StringVar(&flags.ramdiskSize, "ramdisk-size", "64M", "ramdisk size")
	f.StringVar(&flags.ramdiskMount, "ramdisk-mount", "", "ramdisk mount point")

	f.BoolVar(&flags.secureDelete, "secure-delete", false, "overwrite scratch files before removal")
	f.IntVar(&flags.deletePasses, "delete-passes", 3, "secure-delete overwrite pass count")

	f.StringVar(&flags.fixLogFile, "fix-log-file", "", "offline: replace [REDACTED] in this log file with --target")
	f.String("target", "", "target for --fix-log-file")

	f.StringVar(&flags.signatures, "signatures", "", "path to a JSON signature table, overriding the built-in one")
}

func runScan(cmd *cobra.Command, args []string) error {
	if flags.fixLogFile != "" {
		target, _ := cmd.Flags().GetString("target")
		if target == "" && len(args) > 0 {
			target = args[0]
		}
		if target == "" {
			return fmt.Errorf("--fix-log-file requires --target (or a positional target)")
		}
		return adapters.FixLogFile(flags.fixLogFile, target)
	}

	if len(args) == 0 {
		return fmt.Errorf("a target (IP, hostname, or CIDR) is required")
	}
	targetArg := args[0]

	warnUnimplemented(cmd)

	ports, err := resolvePorts(flags.ports, flags.top10, flags.top100)
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		return fmt.Errorf("port list must not be empty")
	}

	techniques, err := parseTechniques(flags.scanTypes, flags.dnsTunnel, flags.icmpTunnel)
	if err != nil {
		return err
	}

	endpoints, err := expandTargets(targetArg)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	logCfg, err := buildLogConfig()
	if err != nil {
		return err
	}
	sink, err := adapters.NewLogrusSink(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rawSockets, err := adapters.AcquireRawSockets()
	if err != nil {
		return err
	}
	defer rawSockets.Release()

	signatures, err := loadSignatures(flags.signatures)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := orchestrator.Config{
		Signatures:     signatures,
		Classifier:     identify.HeuristicClassifier,
		Concurrency:    flags.concurrency,
		Rate:           flags.rate,
		Timeout:        flags.timeout,
		TimeoutConnect: flags.timeoutConnect,
		TimeoutBanner:  flags.timeoutBanner,
		RandomDelay:    flags.randomDelay,
		MaxDelay:       flags.maxDelay,
		Evasion:        flags.evasion || flags.enhanced,
		BaseTTL:        64,
		TTLJitter:      flags.ttlJitter,
		MimicProtocol:  netraw.MimicProtocol(flags.mimicProto),
		MimicVariant:   flags.mimicVar,
		FragMinSize:    flags.fragMinSize,
		FragMaxSize:    flags.fragMaxSize,
		FragFirstMin:   flags.fragFirstMin,
		FragTwoOnly:    flags.fragTwoOnly,
		FragMinDelay:   flags.fragMinDelay,
		FragMaxDelay:   flags.fragMaxDelay,
		FragTimeout:    flags.fragTimeout,
		DNSServer:      flags.dnsServer,
		LookupDomain:   flags.lookupDomain,
		TunnelNonce:    rng.Uint32(),
		Rand:           rng,
	}

	var localIP net.IP
	if conn, err := net.Dial("udp4", net.JoinHostPort(endpoints[0].IP.String(), "53")); err == nil {
		localIP = conn.LocalAddr().(*net.UDPAddr).IP
		conn.Close()
	}

	deps := &orchestrator.Deps{
		Listener: listener.New(rawSockets.TCP, rawSockets.UDP, rawSockets.ICMP),
		TCPSock:  rawSockets.TCP,
		UDPSock:  rawSockets.UDP,
		ICMPSock: rawSockets.ICMP,
		LocalIP:  localIP,
		Logger:   sink,
		Clock:    adapters.SystemClock{},
	}

	results, err := orchestrator.Run(context.Background(), endpoints, ports, techniques, cfg, deps)
	if err != nil && len(results) == 0 {
		return err
	}

	return emitResult(results, err)
}

// loadSignatures returns the built-in signature table, or the table at
// path if --signatures was given.
func loadSignatures(path string) ([]identify.Signature, error) {
	if path == "" {
		return identify.DefaultSignatures()
	}
	return identify.LoadSignatures(path)
}

func warnUnimplemented(cmd *cobra.Command) {
	warn := func(name string) {
		if cmd.Flags().Changed(name) {
			pterm.Warning.Printfln("--%s is accepted for compatibility but has no effect in this build", name)
		}
	}
	warn("use-tor")
	warn("use-ramdisk")
	warn("secure-delete")
	warn("encrypt-logs")
}

func buildLogConfig() (adapters.LogConfig, error) {
	cfg := adapters.LogConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
	if flags.verbose {
		cfg.Level = "debug"
	}
	if flags.logFile != "" {
		cfg.Output = "file"
		cfg.FilePath = flags.logFile
		cfg.MaxSize = 100
		cfg.MaxBackups = 5
		cfg.MaxAge = 30
	}
	return cfg, nil
}

func parseTechniques(raw string, dnsTunnel, icmpTunnel bool) ([]model.Technique, error) {
	var out []model.Technique
	seen := make(map[model.Technique]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t, ok := model.ParseTechnique(name)
		if !ok {
			return nil, fmt.Errorf("unknown scan type: %s", name)
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if dnsTunnel && !seen[model.TechDNSTunnel] {
		out = append(out, model.TechDNSTunnel)
	}
	if icmpTunnel && !seen[model.TechICMPTunnel] {
		out = append(out, model.TechICMPTunnel)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scan types selected")
	}
	return out, nil
}

func emitResult(results []*model.ScanResult, scanErr error) error {
	var out *os.File = os.Stdout
	if flags.outputPath != "" {
		f, err := os.Create(flags.outputPath)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if flags.jsonOut || flags.prettyJSON {
		if err := writeJSON(out, results, flags.prettyJSON); err != nil {
			return err
		}
	} else {
		writeTextReport(out, results, flags.color)
	}

	if scanErr != nil {
		return scanErr
	}
	return nil
}

func resolvePorts(raw string, top10, top100 bool) ([]int, error) {
	if top10 {
		return append([]int(nil), top10Ports...), nil
	}
	if top100 {
		return append([]int(nil), top100Ports...), nil
	}
	return parsePortList(raw)
}

func parsePortList(raw string) ([]int, error) {
	var ports []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			if lo > hi || lo < 1 || hi > 65535 {
				return nil, fmt.Errorf("invalid port range %q", part)
			}
			for p := lo; p <= hi; p++ {
				if !seen[p] {
					seen[p] = true
					ports = append(ports, p)
				}
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("invalid port %q", part)
		}
		if !seen[p] {
			seen[p] = true
			ports = append(ports, p)
		}
	}
	return ports, nil
}

func expandTargets(target string) ([]model.Endpoint, error) {
	if strings.Contains(target, "/") {
		return expandCIDR(target)
	}
	endpoint, err := model.ResolveEndpoint(target)
	if err != nil {
		return nil, err
	}
	return []model.Endpoint{endpoint}, nil
}
