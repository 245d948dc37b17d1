package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netrecon/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "netrecon [target]",
	Short: "Authorized network reconnaissance engine",
	Long: `netrecon probes TCP and UDP ports on one or more IP endpoints using
multiple packet-crafting techniques, then fingerprints any responsive
service and optionally inspects its TLS certificate.

Examples:
  netrecon 192.168.1.1 -p 1-1000 -s syn
  netrecon scanme.example.com -p 22,80,443 -s syn,ssl --json
  netrecon --fix-log-file scan.log --target 10.0.0.1
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initCLILogging(cmd)
	},
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "netrecon: unrecoverable error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initViperConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	registerScanFlags(rootCmd)
	rootCmd.RunE = runScan
}

func initViperConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func initCLILogging(cmd *cobra.Command) {
	level := "info"
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		level = flag.Value.String()
	} else if v := viper.GetString("log.level"); v != "" {
		level = v
	}

	switch level {
	case "debug":
		pterm.EnableDebugMessages()
	default:
		pterm.DisableDebugMessages()
	}
}

func loadEngineConfig() (*config.Config, error) {
	_ = config.LoadDotEnv("")
	return config.LoadConfig(cfgFile)
}
