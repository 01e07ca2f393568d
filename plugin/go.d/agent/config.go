// SPDX-License-Identifier: GPL-3.0-or-later

package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// readConfigBlock returns the configuration block file content.
// An explicitly given path must exist. Otherwise the first '<module>.conf' found in the
// configuration directories is used, and no file at all means module defaults.
func (a *Agent) readConfigBlock() ([]byte, error) {
	if a.ConfigPath != "" {
		data, err := os.ReadFile(a.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read config block: %v", err)
		}
		a.Infof("using config block '%s'", a.ConfigPath)
		return data, nil
	}

	name := a.RunModule + ".conf"
	for _, dir := range a.ConfDir {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			a.Infof("using config block '%s'", path)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config block: %v", err)
		}
	}

	a.Infof("config block '%s' not found in %v, using defaults", name, a.ConfDir)
	return nil, nil
}
