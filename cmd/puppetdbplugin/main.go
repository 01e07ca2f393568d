// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/net/http/httpproxy"

	"github.com/netdata/puppetdb-plugin/logger"
	"github.com/netdata/puppetdb-plugin/pkg/buildinfo"
	"github.com/netdata/puppetdb-plugin/pkg/cli"
	"github.com/netdata/puppetdb-plugin/pkg/executable"
	"github.com/netdata/puppetdb-plugin/plugin/go.d/agent"
	_ "github.com/netdata/puppetdb-plugin/plugin/go.d/collector"
)

func init() {
	// https://github.com/netdata/netdata/issues/8949#issuecomment-638294959
	if v := os.Getenv("TZ"); strings.HasPrefix(v, ":") {
		_ = os.Unsetenv("TZ")
	}
}

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(s string, args ...interface{}) {}))

	opts := parseCLI()

	if opts.Version {
		fmt.Printf("%s.plugin, version: %s\n", executable.Name, buildinfo.Version)
		return
	}

	if lvl := os.Getenv("NETDATA_LOG_LEVEL"); lvl != "" {
		logger.Level.SetByName(lvl)
	}
	if opts.Debug {
		logger.Level.Set(slog.LevelDebug)
	}

	a := agent.New(agent.Config{
		Name:           executable.Name,
		ConfigPath:     opts.ConfigPath,
		ConfDir:        confDirs(),
		RunModule:      "puppetdb",
		Output:         opts.Output,
		MinUpdateEvery: opts.UpdateEvery,
	})

	a.Infof("plugin: name=%s, output=%s, %s", a.Name, a.Output, buildinfo.Info())
	if u, err := user.Current(); err == nil {
		a.Debugf("current user: name=%s, uid=%s", u.Username, u.Uid)
	}

	proxyCfg := httpproxy.FromEnvironment()
	a.Infof("env HTTP_PROXY '%s', HTTPS_PROXY '%s'", proxyCfg.HTTPProxy, proxyCfg.HTTPSProxy)

	a.Run()
}

func parseCLI() *cli.Option {
	opt, err := cli.Parse(os.Args)
	if err != nil {
		if cli.IsHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	return opt
}

func confDirs() []string {
	return []string{
		os.Getenv("NETDATA_USER_CONFIG_DIR"),
		buildinfo.StockConfigDir,
		"/etc/puppetdb-plugin",
	}
}
