/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// demoConfig is the fully-resolved configuration for one run: flags
// override environment variables (prefixed TERMKEY_), which override a
// config file, which overrides these defaults (viper's lookup order).
type demoConfig struct {
	TermType     string
	Encoding     string
	AmbiguousMs  int
	LogLevel     string
	NativeSignal string
	ConfigFile   string
}

func newRootCommand() *cobra.Command {
	cfg := &demoConfig{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "termkeydemo",
		Short: "Drive a pty-backed terminal and binding reader",
		Long:  "termkeydemo opens a pseudo-terminal, wraps it in a system terminal and binding reader, and prints the operations resolved from key sequences typed into it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindConfig(v, cmd)
			resolveConfig(v, cfg)
			return runDemo(cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.TermType, "term-type", "xterm-256color", "terminfo terminal type to parse")
	flags.StringVar(&cfg.Encoding, "encoding", "utf-8", "input encoding: utf-8, utf-16le, utf-16be, ascii, latin1")
	flags.IntVar(&cfg.AmbiguousMs, "ambiguous-timeout", 150, "ambiguity window in milliseconds")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "debug, info, warn, error")
	flags.StringVar(&cfg.NativeSignal, "native-signal", "custom", "default, ignore, custom")
	flags.StringVar(&cfg.ConfigFile, "config", "", "path to a config file (yaml/json/toml)")

	return cmd
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) {
	v.SetEnvPrefix("TERMKEY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	_ = v.BindPFlags(cmd.PersistentFlags())

	if cfgFile, _ := cmd.PersistentFlags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		_ = v.ReadInConfig()
	}
}

func resolveConfig(v *viper.Viper, cfg *demoConfig) {
	if v.IsSet("term-type") {
		cfg.TermType = v.GetString("term-type")
	}
	if v.IsSet("encoding") {
		cfg.Encoding = v.GetString("encoding")
	}
	if v.IsSet("ambiguous-timeout") {
		cfg.AmbiguousMs = v.GetInt("ambiguous-timeout")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("native-signal") {
		cfg.NativeSignal = v.GetString("native-signal")
	}
}

func isTerminalStdin() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
