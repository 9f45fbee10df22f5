package main

import (
	"context"
	"fmt"
	"path/filepath"

	"prospect-engine/internal/config"
)

func cmdConfig(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "usage: prospect config init|validate|path")
		return errUsage
	}
	switch args[0] {
	case "init":
		path, err := config.EnsureUserConfig(a.cfg.App.DataDir)
		if err != nil {
			return err
		}
		return writeJSON(a.stdout, map[string]any{"path": path})
	case "validate":
		_, vr := config.NormalizeAndValidate(a.cfg)
		if err := writeJSON(a.stdout, vr); err != nil {
			return err
		}
		if !vr.OK() {
			return fmt.Errorf("config has %d error(s)", len(vr.Errors))
		}
		return nil
	case "path":
		abs, _ := filepath.Abs(a.cfgPath)
		return writeJSON(a.stdout, map[string]any{"path": abs})
	default:
		fmt.Fprintf(a.stderr, "unknown config action %q\n", args[0])
		return errUsage
	}
}
