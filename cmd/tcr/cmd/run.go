package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/gorilla/handlers"
	logging "github.com/inconshreveable/log15"
	isatty "github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter"

	"github.com/curatenet/tcr/cmd/tcr/common"
	"github.com/curatenet/tcr/lib/api"
	tcrcommon "github.com/curatenet/tcr/lib/common"
	"github.com/curatenet/tcr/lib/common/observer"
	"github.com/curatenet/tcr/lib/metrics"
	"github.com/curatenet/tcr/lib/network/httpcache"
	"github.com/curatenet/tcr/lib/params"
	"github.com/curatenet/tcr/lib/poll"
	"github.com/curatenet/tcr/lib/registry"
	"github.com/curatenet/tcr/lib/storage"
)

const defaultBind string = "0.0.0.0:12345"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagBindString string = tcrcommon.GetENVValue("TCR_BIND", defaultBind)
	flagLogLevel   string = tcrcommon.GetENVValue("TCR_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput  string = tcrcommon.GetENVValue("TCR_LOG_OUTPUT", "")
	flagLogFormat  string = tcrcommon.GetENVValue("TCR_LOG_FORMAT", "")
	flagVerbose    bool   = tcrcommon.GetENVValue("TCR_VERBOSE", "0") == "1"

	flagStorageConfigString string
	flagTLSCertFile         string = tcrcommon.GetENVValue("TCR_TLS_CERT", "")
	flagTLSKeyFile          string = tcrcommon.GetENVValue("TCR_TLS_KEY", "")
	flagNTPServer           string = tcrcommon.GetENVValue("TCR_NTP_SERVER", "")

	flagRateLimit          common.ListFlags
	flagHTTPCacheAdapter   string = tcrcommon.GetENVValue("TCR_HTTP_CACHE_ADAPTER", "")
	flagHTTPCachePoolSize  int    = 10000
	flagHTTPCacheRedisAddr string = tcrcommon.GetENVValue("TCR_HTTP_CACHE_REDIS_ADDRS", "")
)

var (
	nodeCmd *cobra.Command

	storageConfig *storage.Config
	rateLimitRule tcrcommon.RateLimitRule
	clock         tcrcommon.Clock
	logLevel      logging.Lvl
	log           logging.Logger
)

func init() {
	var err error
	var flagGenesis string

	nodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Run the registry node",
		Run: func(c *cobra.Command, args []string) {
			// `--genesis` performs `tcr genesis` before starting the node,
			// one-step startup from scratch.
			if len(flagGenesis) != 0 {
				var balanceStr string
				csv := strings.Split(flagGenesis, ",")
				if len(csv) > 2 {
					common.PrintFlagsError(nodeCmd, "--genesis",
						errors.New("--genesis expects address[,balance], but more than 2 commas detected"))
				}
				if len(csv) == 2 {
					balanceStr = csv[1]
				}
				flagName, err := MakeGenesis(csv[0], balanceStr, flagParamsFile, flagStorageConfigString)
				if len(flagName) != 0 || err != nil {
					common.PrintFlagsError(c, flagName, err)
				}
			}

			parseFlagsNode()

			runNode()
		},
	}

	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		common.PrintFlagsError(nodeCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		common.PrintFlagsError(nodeCmd, "--storage", err)
	}
	flagStorageConfigString = tcrcommon.GetENVValue("TCR_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	nodeCmd.Flags().StringVar(&flagGenesis, "genesis", flagGenesis, "performs the 'genesis' command before running the node. Syntax: key[,balance]")
	nodeCmd.Flags().StringVar(&flagBindString, "bind", flagBindString, "address to listen on")
	nodeCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	nodeCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	nodeCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	nodeCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	nodeCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	nodeCmd.Flags().StringVar(&flagLogFormat, "log-format", flagLogFormat, "log format, {terminal, json}")
	nodeCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	nodeCmd.Flags().StringVar(&flagNTPServer, "ntp-server", flagNTPServer, "ntp server to calibrate the clock against")
	nodeCmd.Flags().Var(&flagRateLimit, "rate-limit-api", "rate limit for the API: [<ip>=]<limit>-<period>, ex) '10-S' '3.3.3.3=100-M'")
	nodeCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter: {mem, redis}")
	nodeCmd.Flags().IntVar(&flagHTTPCachePoolSize, "http-cache-pool-size", flagHTTPCachePoolSize, "http cache pool size")
	nodeCmd.Flags().StringVar(&flagHTTPCacheRedisAddr, "http-cache-redis-addrs", flagHTTPCacheRedisAddr, "http cache redis addrs, ex) 'server1=localhost:6379 server2=localhost:6380'")

	rootCmd.AddCommand(nodeCmd)
}

func parseFlagRateLimit(l common.ListFlags, defaultRate limiter.Rate) (rule tcrcommon.RateLimitRule, err error) {
	rule = tcrcommon.NewRateLimitRule(defaultRate)
	for _, s := range l {
		ip, rate, perr := tcrcommon.ParseRateLimit(s)
		if perr != nil {
			err = perr
			return
		}

		if len(ip) > 0 {
			rule.ByIPAddress[ip] = rate
		} else {
			rule.Default = rate
		}
	}

	return
}

func parseFlagsNode() {
	var err error

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		common.PrintFlagsError(nodeCmd, "--storage", err)
	}

	if len(flagTLSCertFile) > 0 {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			common.PrintFlagsError(nodeCmd, "--tls-cert", err)
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			common.PrintFlagsError(nodeCmd, "--tls-key", err)
		}
	}

	if rateLimitRule, err = parseFlagRateLimit(flagRateLimit, tcrcommon.RateLimitAPI); err != nil {
		common.PrintFlagsError(nodeCmd, "--rate-limit-api", err)
	}

	clock = tcrcommon.LocalClock{}
	if len(flagNTPServer) > 0 {
		clock = tcrcommon.NewNTPClock(flagNTPServer)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		common.PrintFlagsError(nodeCmd, "--log-level", err)
	}

	var logFormatter logging.Format
	switch flagLogFormat {
	case "terminal":
		if isatty.IsTerminal(os.Stdout.Fd()) && len(flagLogOutput) < 1 {
			logFormatter = logging.TerminalFormat()
		} else {
			logFormatter = logging.LogfmtFormat()
		}
	case "", "json":
		logFormatter = tcrcommon.JsonFormatEx(false, true)
	default:
		common.PrintFlagsError(nodeCmd, "--log-format", fmt.Errorf("'%s' is not valid", flagLogFormat))
	}

	logHandler := logging.StreamHandler(os.Stdout, logFormatter)
	if len(flagLogOutput) > 0 {
		if logHandler, err = logging.FileHandler(flagLogOutput, logFormatter); err != nil {
			common.PrintFlagsError(nodeCmd, "--log-output", err)
		}
	}
	logHandler = logging.CallerFileHandler(logHandler)

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	registry.SetLogging(logLevel, logHandler)
	poll.SetLogging(logLevel, logHandler)
	params.SetLogging(logLevel, logHandler)
	api.SetLogging(logLevel, logHandler)

	log.Info("Starting the registry node")

	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tbind", flagBindString)
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageConfigString)
	parsedFlags = append(parsedFlags, "\n\ttls-cert", flagTLSCertFile)
	parsedFlags = append(parsedFlags, "\n\ttls-key", flagTLSKeyFile)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-format", flagLogFormat)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)
	parsedFlags = append(parsedFlags, "\n\tntp-server", flagNTPServer)
	parsedFlags = append(parsedFlags, "\n\trate-limit-api", rateLimitRule)
	parsedFlags = append(parsedFlags, "\n\thttp-cache-adapter", flagHTTPCacheAdapter)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}
}

func newHTTPCacheClient() (*httpcache.Client, error) {
	if len(flagHTTPCacheAdapter) == 0 {
		return nil, nil
	}

	redisAddrs := map[string]string{}
	for _, pair := range strings.Fields(flagHTTPCacheRedisAddr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid redis addr: %s", pair)
		}
		redisAddrs[kv[0]] = kv[1]
	}

	adapter, err := httpcache.NewAdapter(httpcache.Config{
		Adapter:    flagHTTPCacheAdapter,
		PoolSize:   flagHTTPCachePoolSize,
		RedisAddrs: redisAddrs,
	})
	if err != nil {
		return nil, err
	}

	return httpcache.NewClient(
		httpcache.WithAdapter(adapter),
		httpcache.WithExpire(time.Second),
		httpcache.WithLogger(log),
	)
}

// subscribeEventLog mirrors protocol events into the node log.
func subscribeEventLog() {
	observer.ListingObserver.On(observer.ConditionAll, func(args ...interface{}) {
		log.Info("listing event", "args", args)
	})
	observer.ChallengeObserver.On(observer.ConditionAll, func(args ...interface{}) {
		log.Info("challenge event", "args", args)
	})
	observer.PollObserver.On(observer.ConditionAll, func(args ...interface{}) {
		log.Info("poll event", "args", args)
	})
	observer.RewardObserver.On(observer.ConditionAll, func(args ...interface{}) {
		log.Info("reward event", "args", args)
	})
	observer.ParamObserver.On(observer.ConditionAll, func(args ...interface{}) {
		log.Info("param event", "args", args)
	})
}

func runNode() {
	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)

		os.Exit(1)
	}
	defer st.Close()

	if err := params.Init(st, nil); err != nil {
		log.Crit("failed to initialize the parameter table", "error", err)

		os.Exit(1)
	}

	cacheClient, err := newHTTPCacheClient()
	if err != nil {
		common.PrintFlagsError(nodeCmd, "--http-cache-adapter", err)
	}

	subscribeEventLog()

	handler := api.NewHandler(st, clock)
	router := handler.Router(rateLimitRule, cacheClient)

	server := &http.Server{
		Addr:    flagBindString,
		Handler: handlers.CombinedLoggingHandler(os.Stdout, router),
	}

	var g run.Group
	{
		g.Add(func() error {
			log.Info("listening", "bind", flagBindString)
			if len(flagTLSCertFile) > 0 {
				return server.ListenAndServeTLS(flagTLSCertFile, flagTLSKeyFile)
			}
			return server.ListenAndServe()
		}, func(error) {
			server.Close()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return common.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
