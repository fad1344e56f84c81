package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/Armaan1620/myshell/internal/config"
	"github.com/Armaan1620/myshell/internal/executor"
	"github.com/Armaan1620/myshell/internal/jobctl"
	"github.com/Armaan1620/myshell/internal/repl"
	"github.com/Armaan1620/myshell/internal/tty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var (
	cfgPath  string
	command  string
	debug    bool
	exitCode int
)

// loadConfig reads --config, or the file under $HOME when the flag is unset.
// A missing default file means built-in defaults.
func loadConfig() (*config.Configuration, error) {
	osFs := afero.NewOsFs()
	if cfgPath != "" {
		return config.Load(osFs, cfgPath)
	}

	configuration, err := config.Load(osFs, config.DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return configuration, err
}

// rootCmd runs the interpreter.
var rootCmd = &cobra.Command{
	Use:   "myshell",
	Short: "A small Unix shell",
	Long: `A small Unix shell: runs programs with one redirect or one pipe,
in the foreground or in the background, with simple job control.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		logger := log.New(io.Discard, "[myshell] ", log.LstdFlags)
		if debug || configuration.Debug {
			logger.SetOutput(cmd.ErrOrStderr())
		}

		spawner := executor.New()
		fgOpts := []jobctl.Option{
			jobctl.WithKillSignal(configuration.Signal()),
			jobctl.WithLogger(logger),
		}
		if terminal, err := tty.Open(unix.Stdin); err == nil {
			defer terminal.Close()
			spawner.Terminal = terminal
			fgOpts = append(fgOpts, jobctl.WithTerminal(terminal))
		} else {
			logger.Printf("no job control: %v", err)
		}

		fg := jobctl.NewForeground(fgOpts...)
		fg.Install()
		defer fg.Close()

		opts := repl.Options{
			Spawner:    spawner,
			Foreground: fg,
			Jobs:       jobctl.NewTable(configuration.MaxJobs, nil),
			Logger:     logger,
		}

		if cmd.Flags().Changed("command") {
			sh := repl.New(opts)
			if err := sh.Execute(command); err != nil {
				return err
			}
			exitCode = sh.LastStatus()
			return nil
		}

		reader, err := repl.NewReader(configuration.Prompt, configuration.HistoryFile)
		if err != nil {
			return err
		}
		defer reader.Close()

		opts.In = reader
		sh := repl.New(opts)
		if err := sh.Run(); err != nil {
			return err
		}
		exitCode = sh.ExitCode()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file or directory (default $HOME/.myshell/config.yaml)")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run a single command line and exit with its status")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log to stderr")
}
